// Package difficulty assigns a 3-level reading difficulty to an article.
// The scorer is an additive heuristic on a 0-100 scale, kept deliberately
// simple so editors can audit every triggered reason tag.
package difficulty

import (
	"strings"
	"unicode"

	"hanriver.app/readfeed/internal/normalize"
)

// Levels and thresholds. Score <= 33 is L1, <= 66 is L2, above is L3.
const (
	LevelL1 = "L1"
	LevelL2 = "L2"
	LevelL3 = "L3"

	levelL1MaxScore = 33
	levelL2MaxScore = 66
)

// Reason tags recorded alongside the score.
const (
	ReasonSectionL1Hint    = "section_l1_hint"
	ReasonSectionL2Hint    = "section_l2_hint"
	ReasonSectionL3Hint    = "section_l3_hint"
	ReasonLongSentences    = "long_sentences"
	ReasonMediumSentences  = "medium_sentences"
	ReasonShortSentences   = "short_sentences"
	ReasonConnectiveDense  = "connective_dense"
	ReasonConnectiveSingle = "connective_present"
	ReasonNumberDense      = "number_dense"
)

var sectionL1Keywords = []string{"생활", "문화", "연예", "스포츠", "lifestyle", "culture", "entertainment", "sports"}
var sectionL2Keywords = []string{"사회", "국제", "it", "과학", "society", "international", "tech"}
var sectionL3Keywords = []string{"정치", "경제", "사설", "오피니언", "politics", "economy", "editorial", "opinion"}

// Sources publishing learner-targeted easy Korean.
var easySources = map[string]struct{}{
	"kid-chosun":   {},
	"easy-hankyul": {},
}

// Connectives common in expository Korean prose; their density tracks
// sentence complexity well enough for a 3-level split.
var connectiveLexicon = []string{
	"그리고", "하지만", "그러나", "그래서", "또한", "그런데",
	"따라서", "왜냐하면", "게다가", "그러므로", "반면",
	"즉", "한편", "더불어", "비록", "만약", "예를 들어",
}

// Result is the classifier output stored on the article.
type Result struct {
	Level   string
	Score   int
	Reasons []string
}

// Score computes the difficulty of a cleaned body given its section label
// and source. Purely additive; the final score clamps to [0,100].
func Score(section, bodyText, sourceKey string) Result {
	score := 0
	reasons := make([]string, 0, 4)

	switch {
	case sectionMatches(section, sectionL3Keywords):
		score += 75
		reasons = append(reasons, ReasonSectionL3Hint)
	case sectionMatches(section, sectionL2Keywords):
		score += 45
		reasons = append(reasons, ReasonSectionL2Hint)
	case sectionMatches(section, sectionL1Keywords), isEasySource(sourceKey):
		score += 15
		reasons = append(reasons, ReasonSectionL1Hint)
	}

	body := normalize.Whitespace(bodyText)
	avgLen := averageSentenceLength(body)
	switch {
	case avgLen >= 70:
		score += 25
		reasons = append(reasons, ReasonLongSentences)
	case avgLen >= 45:
		score += 15
		reasons = append(reasons, ReasonMediumSentences)
	default:
		score += 5
		reasons = append(reasons, ReasonShortSentences)
	}

	switch density := connectivesPer200Chars(body); {
	case density >= 2:
		score += 20
		reasons = append(reasons, ReasonConnectiveDense)
	case density >= 1:
		score += 10
		reasons = append(reasons, ReasonConnectiveSingle)
	}

	if digitRatio(body) > 0.05 {
		score += 10
		reasons = append(reasons, ReasonNumberDense)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Level:   levelForScore(score),
		Score:   score,
		Reasons: reasons,
	}
}

func levelForScore(score int) string {
	switch {
	case score <= levelL1MaxScore:
		return LevelL1
	case score <= levelL2MaxScore:
		return LevelL2
	default:
		return LevelL3
	}
}

func sectionMatches(section string, keywords []string) bool {
	lowered := strings.ToLower(strings.TrimSpace(section))
	if lowered == "" {
		return false
	}
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func isEasySource(sourceKey string) bool {
	_, ok := easySources[strings.ToLower(strings.TrimSpace(sourceKey))]
	return ok
}

func averageSentenceLength(body string) float64 {
	sentences := normalize.SplitSentences(body)
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += len([]rune(s))
	}
	return float64(total) / float64(len(sentences))
}

func connectivesPer200Chars(body string) float64 {
	length := len([]rune(body))
	if length == 0 {
		return 0
	}
	count := 0
	for _, connective := range connectiveLexicon {
		count += strings.Count(body, connective)
	}
	return float64(count) / (float64(length) / 200.0)
}

func digitRatio(body string) float64 {
	if body == "" {
		return 0
	}
	digits := 0
	total := 0
	for _, r := range body {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
