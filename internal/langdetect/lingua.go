// Package langdetect identifies the language of incoming article text.
// Korean is short-circuited on script ratio; everything else goes through
// a lingua detector restricted to the languages the feed actually sees.
package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"hanriver.app/readfeed/internal/normalize"
)

const undetermined = "und"

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// DetectISO6391 returns a two-letter language code for text, or "und"
// when detection is not possible.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return undetermined
	}

	letters := 0
	hangul := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
		if normalize.IsHangul(r) {
			hangul++
		}
	}
	if letters < 6 {
		return undetermined
	}
	if hangul*2 > letters {
		return "ko"
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return undetermined
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return undetermined
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.Korean,
				lingua.English,
				lingua.Japanese,
				lingua.Chinese,
			).
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
