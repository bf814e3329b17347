package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Trailing boilerplate that Korean wire copy appends after the article
// proper. Cleaning truncates at the first occurrence.
var boilerplateMarkers = []string{
	"무단전재",
	"무단 전재",
	"재배포 금지",
	"재배포금지",
	"무단복제",
	"저작권자",
	"기자 =",
	"ⓒ",
	"©",
	"Copyright",
}

var scriptNoiseTokens = []string{
	"function(",
	"window.",
	"document.",
	"googletag",
	"adsbygoogle",
	"gpt.js",
	"dataLayer",
	"href=",
	"var ",
}

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
)

const preambleHangulOffset = 40

// CleanBody produces the canonical plain-text body from scraped input.
// bodyHTML takes precedence when present. Never returns empty output for
// non-empty input: cleaning that strips everything falls back to the
// whitespace-normalized raw text.
func CleanBody(bodyText, bodyHTML string) string {
	raw := strings.TrimSpace(bodyText)
	if strings.TrimSpace(bodyHTML) != "" {
		if extracted := extractHTMLText(bodyHTML); extracted != "" {
			raw = extracted
		}
	}
	if raw == "" {
		return ""
	}

	stripped := stripInlineTags(raw)
	cleaned := dropForeignPreamble(cleanChunks(stripped))

	if cleaned == "" {
		cleaned = dropForeignPreamble(Whitespace(stripped))
	}
	if cleaned == "" {
		cleaned = Whitespace(raw)
	}
	return cleaned
}

func extractHTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, iframe, figure").Remove()

	var parts []string
	doc.Find("p, li, h1, h2, h3, br").Each(func(_ int, s *goquery.Selection) {
		if text := Whitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	if len(parts) == 0 {
		return Whitespace(doc.Text())
	}
	return strings.Join(parts, "\n")
}

func stripInlineTags(raw string) string {
	out := tagPattern.ReplaceAllString(raw, " ")
	out = entityPattern.ReplaceAllString(out, " ")
	return out
}

func cleanChunks(text string) string {
	chunks := SplitSentences(text)
	if len(chunks) == 0 {
		return ""
	}

	kept := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		head, cut := cutAtBoilerplate(chunk)
		if head != "" && !isNoiseChunk(head) {
			kept = append(kept, head)
		}
		if cut {
			break
		}
	}
	return Whitespace(strings.Join(kept, " "))
}

func cutAtBoilerplate(chunk string) (string, bool) {
	earliest := -1
	for _, marker := range boilerplateMarkers {
		if idx := strings.Index(chunk, marker); idx >= 0 && (earliest < 0 || idx < earliest) {
			earliest = idx
		}
	}
	if earliest < 0 {
		return chunk, false
	}
	return strings.TrimSpace(chunk[:earliest]), true
}

func isNoiseChunk(chunk string) bool {
	for _, token := range scriptNoiseTokens {
		if strings.Contains(chunk, token) {
			return true
		}
	}

	hangul := HangulCount(chunk)

	if strings.Contains(chunk, "http://") || strings.Contains(chunk, "https://") {
		if hangul < 5 {
			return true
		}
	}

	symbols := 0
	latin := 0
	for _, r := range chunk {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			latin++
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		default:
			symbols++
		}
	}

	if symbols > 15 && symbols > hangul {
		return true
	}
	if hangul < 20 && latin > hangul*2 && latin > 20 {
		return true
	}
	return false
}

// dropForeignPreamble skips a long non-Hangul lead-in: when the first
// Hangul character appears deep into the text the prefix is almost always
// leftover markup or a byline in another script.
func dropForeignPreamble(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if IsHangul(r) {
			if i > preambleHangulOffset {
				return strings.TrimSpace(string(runes[i:]))
			}
			return text
		}
	}
	return text
}
