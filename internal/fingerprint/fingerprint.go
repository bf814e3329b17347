// Package fingerprint computes the content identity keys used for
// duplicate detection: a 32-bit URL hash and a 64-bit body SimHash.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"strconv"
	"strings"
	"unicode"
)

// NearDuplicateMaxDistance is the Hamming distance at or below which two
// body SimHashes are treated as the same story. Real duplicates typically
// differ by 0-2 bits, so the threshold is deliberately tight.
const NearDuplicateMaxDistance = 3

const maxSimhashTokens = 512

// Hash32 returns the DJB2 hash of s folded to unsigned 32 bits, as eight
// lowercase hex characters. Used as the canonical-URL lookup key.
func Hash32(s string) string {
	var h uint32 = 5381
	for i := 0; i < len(s); i++ {
		h = (h * 33) ^ uint32(s[i])
	}
	return fmt.Sprintf("%08x", h)
}

// Simhash returns the 64-bit SimHash of text as sixteen lowercase hex
// characters. Empty or tokenless input yields the all-zero hash.
func Simhash(text string) string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return "0000000000000000"
	}

	var bitVotes [64]int
	for _, token := range tokens {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(token))
		h := hasher.Sum64()
		for bit := 0; bit < 64; bit++ {
			if h&(uint64(1)<<bit) != 0 {
				bitVotes[bit]++
			} else {
				bitVotes[bit]--
			}
		}
	}

	var result uint64
	for bit := 0; bit < 64; bit++ {
		if bitVotes[bit] > 0 {
			result |= uint64(1) << bit
		}
	}
	return fmt.Sprintf("%016x", result)
}

// Distance returns the Hamming distance between two hex-encoded 64-bit
// SimHashes. ok is false when either value does not parse.
func Distance(hexA, hexB string) (int, bool) {
	a, errA := strconv.ParseUint(strings.TrimSpace(hexA), 16, 64)
	b, errB := strconv.ParseUint(strings.TrimSpace(hexB), 16, 64)
	if errA != nil || errB != nil {
		return 0, false
	}
	return bits.OnesCount64(a ^ b), true
}

// IsNearDuplicate reports whether two SimHashes are within the duplicate
// threshold. Unparseable hashes never match.
func IsNearDuplicate(hexA, hexB string) bool {
	d, ok := Distance(hexA, hexB)
	return ok && d <= NearDuplicateMaxDistance
}

func tokenize(text string) []string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return nil
	}

	parts := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if len([]rune(p)) < 2 {
			continue
		}
		tokens = append(tokens, p)
		if len(tokens) >= maxSimhashTokens {
			break
		}
	}
	return tokens
}
