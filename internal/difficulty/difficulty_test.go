package difficulty

import (
	"strings"
	"testing"
)

// sentencesOfLength builds count sentences of exactly chars runes each
// (including the terminal period).
func sentencesOfLength(count, chars int) string {
	sentence := strings.Repeat("가", chars-1) + "."
	parts := make([]string, count)
	for i := range parts {
		parts[i] = sentence
	}
	return strings.Join(parts, " ")
}

func TestScore_LevelThresholds(t *testing.T) {
	t.Parallel()

	easy := Score("연예", sentencesOfLength(5, 30), "")
	if easy.Level != LevelL1 {
		t.Fatalf("expected L1 for entertainment short sentences, got %s (score %d)", easy.Level, easy.Score)
	}
	if easy.Score != 20 { // 15 section + 5 short sentences
		t.Fatalf("unexpected score: %d", easy.Score)
	}

	hard := Score("경제", sentencesOfLength(4, 80), "")
	if hard.Level != LevelL3 {
		t.Fatalf("expected L3 for economy long sentences, got %s (score %d)", hard.Level, hard.Score)
	}
	if hard.Score != 100 { // 75 + 25
		t.Fatalf("unexpected score: %d", hard.Score)
	}
}

func TestScore_Monotonic_SentenceLength(t *testing.T) {
	t.Parallel()

	s40 := Score("사회", sentencesOfLength(4, 40), "")
	s50 := Score("사회", sentencesOfLength(4, 50), "")
	s75 := Score("사회", sentencesOfLength(4, 75), "")

	if s50.Score < s40.Score {
		t.Fatalf("expected score(50) >= score(40): %d < %d", s50.Score, s40.Score)
	}
	if s75.Score < s50.Score {
		t.Fatalf("expected score(75) >= score(50): %d < %d", s75.Score, s50.Score)
	}
}

func TestScore_SentenceLengthReasons(t *testing.T) {
	t.Parallel()

	if r := Score("", sentencesOfLength(3, 80), ""); !hasReason(r, ReasonLongSentences) {
		t.Fatalf("expected long_sentences reason, got %v", r.Reasons)
	}
	if r := Score("", sentencesOfLength(3, 50), ""); !hasReason(r, ReasonMediumSentences) {
		t.Fatalf("expected medium_sentences reason, got %v", r.Reasons)
	}
	if r := Score("", sentencesOfLength(3, 20), ""); !hasReason(r, ReasonShortSentences) {
		t.Fatalf("expected short_sentences reason, got %v", r.Reasons)
	}
}

func TestScore_ConnectiveDensity(t *testing.T) {
	t.Parallel()

	// 200 chars with two connectives = density 2 per 200.
	body := "그리고 " + strings.Repeat("가", 90) + ". 하지만 " + strings.Repeat("나", 92) + "."
	r := Score("", body, "")
	if !hasReason(r, ReasonConnectiveDense) {
		t.Fatalf("expected connective_dense reason, got %v (score %d)", r.Reasons, r.Score)
	}
}

func TestScore_NumberDense(t *testing.T) {
	t.Parallel()

	body := "2026년 12월 34억 5600만 원이 책정됐다. " + strings.Repeat("가", 60) + "."
	r := Score("", body, "")
	if !hasReason(r, ReasonNumberDense) {
		t.Fatalf("expected number_dense reason, got %v", r.Reasons)
	}
}

func TestScore_EasySourceHint(t *testing.T) {
	t.Parallel()

	r := Score("", sentencesOfLength(4, 30), "kid-chosun")
	if !hasReason(r, ReasonSectionL1Hint) {
		t.Fatalf("expected section_l1_hint for easy source, got %v", r.Reasons)
	}
}

func TestScore_ClampsTo100(t *testing.T) {
	t.Parallel()

	// L3 section + long sentences + dense connectives + digits.
	body := "그리고 2026년 1234억 " + strings.Repeat("가", 70) + ". 하지만 5678만 " + strings.Repeat("나", 70) + "."
	r := Score("정치", body, "")
	if r.Score > 100 {
		t.Fatalf("expected clamped score, got %d", r.Score)
	}
	if r.Level != LevelL3 {
		t.Fatalf("expected L3, got %s", r.Level)
	}
}

func hasReason(r Result, reason string) bool {
	for _, got := range r.Reasons {
		if got == reason {
			return true
		}
	}
	return false
}
