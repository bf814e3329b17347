package normalize

import "testing"

func TestWhitespace(t *testing.T) {
	t.Parallel()

	if got := Whitespace("  안녕  \t하세요 \n "); got != "안녕 하세요" {
		t.Fatalf("unexpected collapsed text: %q", got)
	}
	if got := Whitespace(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
}

func TestURL_StripsTrackingAndNormalizes(t *testing.T) {
	t.Parallel()

	got := URL("https://News.Example.COM:443/article/123/?utm_source=rss&fbclid=x&b=2&a=1#comments")
	if got != "https://news.example.com/article/123?a=1&b=2" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestURL_KeepsNonDefaultPort(t *testing.T) {
	t.Parallel()

	got := URL("http://News.Example.COM:8080/article/1")
	if got != "http://news.example.com:8080/article/1" {
		t.Fatalf("non-default port must survive canonicalization, got %q", got)
	}
	if URL("http://news.example.com:8080/article/1") == URL("http://news.example.com/article/1") {
		t.Fatal("URLs differing only in a non-default port must not collide")
	}
	if got := URL("http://news.example.com:80/article/1"); got != "http://news.example.com/article/1" {
		t.Fatalf("default http port should be dropped, got %q", got)
	}
}

func TestURL_Invalid(t *testing.T) {
	t.Parallel()

	if got := URL("not a url"); got != "" {
		t.Fatalf("expected empty canonical for invalid URL, got %q", got)
	}
	if got := URL("/relative/path"); got != "" {
		t.Fatalf("expected empty canonical for relative URL, got %q", got)
	}
}

func TestTitleKey(t *testing.T) {
	t.Parallel()

	if got := TitleKey("[단독] 한국 경제 성장률 상승 (종합)"); got != "한국 경제 성장률 상승" {
		t.Fatalf("unexpected title key: %q", got)
	}
	if got := TitleKey("  Breaking NEWS  "); got != "breaking news" {
		t.Fatalf("unexpected title key: %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	got := SplitSentences("첫 문장이다. 둘째 문장!\n셋째 줄")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
	if got[0] != "첫 문장이다." {
		t.Fatalf("unexpected first sentence: %q", got[0])
	}
}

func TestCleanBody_TruncatesAtBoilerplate(t *testing.T) {
	t.Parallel()

	raw := "서울의 새 도서관이 문을 열었다. 시민들이 많이 방문했다. 저작권자 뉴스사 무단전재 금지. 여기는 버려진다."
	got := CleanBody(raw, "")
	if got != "서울의 새 도서관이 문을 열었다. 시민들이 많이 방문했다." {
		t.Fatalf("unexpected cleaned body: %q", got)
	}
}

func TestCleanBody_DropsScriptNoise(t *testing.T) {
	t.Parallel()

	raw := "window.dataLayer = window.dataLayer || []. 오늘 날씨가 맑고 따뜻했다."
	got := CleanBody(raw, "")
	if got != "오늘 날씨가 맑고 따뜻했다." {
		t.Fatalf("unexpected cleaned body: %q", got)
	}
}

func TestCleanBody_StripsHTML(t *testing.T) {
	t.Parallel()

	html := "<html><body><script>var x=1;</script><p>부산에서 영화제가 열렸다.</p><p>관객이 크게 늘었다.</p></body></html>"
	got := CleanBody("", html)
	if got != "부산에서 영화제가 열렸다. 관객이 크게 늘었다." {
		t.Fatalf("unexpected extracted body: %q", got)
	}
}

func TestCleanBody_NeverEmptyForNonEmptyInput(t *testing.T) {
	t.Parallel()

	// Every chunk is classified as noise; cleaning must fall back to the
	// whitespace-normalized raw text.
	raw := "googletag.cmd.push(function(){});"
	got := CleanBody(raw, "")
	if got == "" {
		t.Fatalf("expected non-empty fallback output")
	}
}

func TestCleanBody_DropsForeignPreamble(t *testing.T) {
	t.Parallel()

	raw := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa 국회가 새 법안을 통과시켰다"
	got := CleanBody(raw, "")
	if got != "국회가 새 법안을 통과시켰다" {
		t.Fatalf("unexpected preamble handling: %q", got)
	}
}

func TestHangulCount(t *testing.T) {
	t.Parallel()

	if got := HangulCount("abc 한국"); got != 2 {
		t.Fatalf("unexpected hangul count: %d", got)
	}
}
