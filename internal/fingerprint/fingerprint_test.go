package fingerprint

import "testing"

func TestHash32_KnownValues(t *testing.T) {
	t.Parallel()

	if got := Hash32(""); got != "00001505" {
		t.Fatalf("unexpected hash for empty string: %q", got)
	}
	if got := Hash32("a"); got != "0002b5c4" {
		t.Fatalf("unexpected hash for %q: %q", "a", got)
	}
	if Hash32("https://news.example.com/a") == Hash32("https://news.example.com/b") {
		t.Fatalf("expected different URLs to hash differently")
	}
}

func TestHash32_Stable(t *testing.T) {
	t.Parallel()

	url := "https://news.example.com/economy/2026/08/123456"
	if Hash32(url) != Hash32(url) {
		t.Fatalf("expected stable hash for repeated input")
	}
	if len(Hash32(url)) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", Hash32(url))
	}
}

func TestSimhash_DeterministicAndOrderIndependent(t *testing.T) {
	t.Parallel()

	text := "한국 경제가 빠르게 성장하고 있다 정부는 새로운 정책을 발표했다"
	first := Simhash(text)
	second := Simhash(text)
	if first != second {
		t.Fatalf("expected deterministic simhash: %q vs %q", first, second)
	}
	if len(first) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", first)
	}

	// Summation over the token multiset is order independent.
	reordered := "정부는 새로운 정책을 발표했다 한국 경제가 빠르게 성장하고 있다"
	if Simhash(reordered) != first {
		t.Fatalf("expected reordered tokens to produce the same simhash")
	}
}

func TestSimhash_EmptyInput(t *testing.T) {
	t.Parallel()

	if got := Simhash(""); got != "0000000000000000" {
		t.Fatalf("expected all-zero hash for empty input, got %q", got)
	}
	if got := Simhash("  \n\t "); got != "0000000000000000" {
		t.Fatalf("expected all-zero hash for whitespace input, got %q", got)
	}
}

func TestDistance_ThresholdBoundary(t *testing.T) {
	t.Parallel()

	// 0x7 differs from zero in exactly 3 bits, 0xf in exactly 4.
	three, ok := Distance("0000000000000000", "0000000000000007")
	if !ok || three != 3 {
		t.Fatalf("unexpected distance: got %d ok=%t want 3", three, ok)
	}
	four, ok := Distance("0000000000000000", "000000000000000f")
	if !ok || four != 4 {
		t.Fatalf("unexpected distance: got %d ok=%t want 4", four, ok)
	}

	if !IsNearDuplicate("0000000000000000", "0000000000000007") {
		t.Fatalf("expected distance 3 to be a near-duplicate")
	}
	if IsNearDuplicate("0000000000000000", "000000000000000f") {
		t.Fatalf("expected distance 4 to not be a near-duplicate")
	}
}

func TestDistance_Unparseable(t *testing.T) {
	t.Parallel()

	if _, ok := Distance("zzzz", "0000000000000000"); ok {
		t.Fatalf("expected unparseable hash to report ok=false")
	}
	if IsNearDuplicate("", "0000000000000000") {
		t.Fatalf("expected empty hash to never match")
	}
}
