// Package policy decides whether a cleaned article is suitable for the
// reading feed. Rejection is a classification outcome, not an error.
package policy

import (
	"strings"

	"hanriver.app/readfeed/internal/normalize"
)

// Rejection reasons recorded on filtered articles.
const (
	ReasonBlockedTopicSectionOrTags = "blocked_topic_section_or_tags"
	ReasonBlockedTopicTitle         = "blocked_topic_title"
	ReasonBlockedURLPath            = "blocked_url_path"
	ReasonBodyTooShort              = "body_too_short"
	ReasonBodyTooLong               = "body_too_long"
)

const (
	DefaultMinBodyChars = 220

	shortBodyHangulFloor    = 100
	shortBodySentenceFloor  = 3
	singleSentenceCharFloor = 320
)

// Politics and opinion content is excluded from the learner feed.
var blockedTopicPatterns = []string{
	"정치",
	"사설",
	"오피니언",
	"칼럼",
	"논설",
	"기고",
	"대선",
	"총선",
	"politics",
	"opinion",
	"editorial",
	"column",
}

var blockedURLPathPatterns = []string{
	"/politics/",
	"/opinion/",
	"/editorial/",
	"/column/",
	"/정치/",
	"/오피니언/",
	"/사설/",
}

// Engine evaluates the content policy with configurable length bounds.
type Engine struct {
	minBodyChars int
	maxBodyChars int
}

// Input is the already-normalized article view the policy inspects.
type Input struct {
	Section      string
	Tags         []string
	Title        string
	SourceURL    string
	CanonicalURL string
	BodyText     string
}

// Verdict is the policy outcome. Reason is empty when Allowed.
type Verdict struct {
	Allowed bool
	Reason  string
}

// NewEngine builds an Engine. minBodyChars <= 0 selects the default;
// maxBodyChars <= 0 disables the upper bound.
func NewEngine(minBodyChars, maxBodyChars int) *Engine {
	if minBodyChars <= 0 {
		minBodyChars = DefaultMinBodyChars
	}
	if maxBodyChars < 0 {
		maxBodyChars = 0
	}
	return &Engine{
		minBodyChars: minBodyChars,
		maxBodyChars: maxBodyChars,
	}
}

// Evaluate applies the policy checks in order: blocked topic in
// section/tags, blocked topic in title, blocked URL path, body too short,
// body too long (when an upper bound is configured).
func (e *Engine) Evaluate(in Input) Verdict {
	sectionAndTags := strings.ToLower(strings.TrimSpace(in.Section + " " + strings.Join(in.Tags, " ")))
	if matchesBlockedTopic(sectionAndTags) {
		return Verdict{Reason: ReasonBlockedTopicSectionOrTags}
	}

	if matchesBlockedTopic(strings.ToLower(in.Title)) {
		return Verdict{Reason: ReasonBlockedTopicTitle}
	}

	if matchesBlockedPath(in.SourceURL) || matchesBlockedPath(in.CanonicalURL) {
		return Verdict{Reason: ReasonBlockedURLPath}
	}

	body := normalize.Whitespace(in.BodyText)
	length := len([]rune(body))
	sentences := len(normalize.SplitSentences(body))
	hangul := normalize.HangulCount(body)

	switch {
	case length < e.minBodyChars:
		return Verdict{Reason: ReasonBodyTooShort}
	case hangul < shortBodyHangulFloor && sentences < shortBodySentenceFloor:
		return Verdict{Reason: ReasonBodyTooShort}
	case sentences <= 1 && length < singleSentenceCharFloor:
		return Verdict{Reason: ReasonBodyTooShort}
	}

	if e.maxBodyChars > 0 && length > e.maxBodyChars {
		return Verdict{Reason: ReasonBodyTooLong}
	}

	return Verdict{Allowed: true}
}

func matchesBlockedTopic(text string) bool {
	if text == "" {
		return false
	}
	for _, pattern := range blockedTopicPatterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func matchesBlockedPath(rawURL string) bool {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))
	if lowered == "" {
		return false
	}
	for _, pattern := range blockedURLPathPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
