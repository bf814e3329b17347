// Package normalize turns raw scraped article fields into the canonical
// forms the rest of the pipeline keys on: collapsed whitespace, de-tracked
// URLs, comparison title keys and cleaned body text.
package normalize

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
)

var trackingQueryKeys = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"mc_cid":  {},
	"mc_eid":  {},
	"ref":     {},
	"ref_src": {},
	"sid":     {},
}

// Whitespace collapses runs of whitespace into single spaces and trims.
// Control characters are dropped.
func Whitespace(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	lastSpace := false
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// URL returns the canonical form of a raw article URL: lowercased
// scheme/host, fragment removed, tracking parameters stripped and the
// remaining query sorted. Returns "" when the input does not parse as an
// absolute URL; callers must treat that as an ingestion failure.
func URL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	host := strings.ToLower(parsed.Hostname())
	port := parsed.Port()
	parsed.Host = host
	if port != "" {
		defaultPort := (parsed.Scheme == "http" && port == "80") || (parsed.Scheme == "https" && port == "443")
		if !defaultPort {
			parsed.Host = host + ":" + port
		}
	}

	parsed.Fragment = ""
	path := strings.TrimSpace(parsed.EscapedPath())
	if path == "" {
		path = "/"
	}
	path = strings.ReplaceAll(path, "//", "/")
	if strings.HasSuffix(path, "/") && path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	parsed.Path = path
	parsed.RawPath = ""

	q := parsed.Query()
	for key := range q {
		lower := strings.ToLower(key)
		if strings.HasPrefix(lower, "utm_") {
			q.Del(key)
			continue
		}
		if _, ok := trackingQueryKeys[lower]; ok {
			q.Del(key)
		}
	}
	if len(q) > 0 {
		keys := make([]string, 0, len(q))
		for key := range q {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		reordered := url.Values{}
		for _, key := range keys {
			values := q[key]
			sort.Strings(values)
			for _, value := range values {
				reordered.Add(key, value)
			}
		}
		parsed.RawQuery = reordered.Encode()
	} else {
		parsed.RawQuery = ""
	}

	return parsed.String()
}

// TitleKey lowercases a title and strips bracketed prefixes and a trailing
// parenthetical suffix. The result is only for duplicate-title comparison,
// never for display.
func TitleKey(title string) string {
	key := strings.ToLower(Whitespace(title))
	if key == "" {
		return ""
	}

	for strings.HasPrefix(key, "[") {
		end := strings.Index(key, "]")
		if end < 0 {
			break
		}
		key = strings.TrimSpace(key[end+1:])
	}

	if strings.HasSuffix(key, ")") {
		if start := strings.LastIndex(key, "("); start > 0 {
			key = strings.TrimSpace(key[:start])
		}
	}

	return key
}

// SplitSentences splits cleaned text into sentence-like chunks on terminal
// punctuation or newlines. Chunks are trimmed; empty chunks are dropped.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		current.WriteRune(r)
		if isTerminalPunct(r) {
			flush()
		}
	}
	flush()

	return sentences
}

func isTerminalPunct(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '。', '！', '？':
		return true
	}
	return false
}

// HangulCount counts Hangul syllables and jamo in s.
func HangulCount(s string) int {
	count := 0
	for _, r := range s {
		if IsHangul(r) {
			count++
		}
	}
	return count
}

// IsHangul reports whether r is a Hangul syllable or jamo.
func IsHangul(r rune) bool {
	switch {
	case r >= 0xAC00 && r <= 0xD7A3: // syllables
		return true
	case r >= 0x1100 && r <= 0x11FF: // jamo
		return true
	case r >= 0x3130 && r <= 0x318F: // compatibility jamo
		return true
	}
	return false
}
