package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hanriver.app/readfeed/internal/config"
	"hanriver.app/readfeed/internal/db"
	"hanriver.app/readfeed/internal/policy"
)

func testService() *Service {
	cfg := &config.Config{
		MinBodyChars:    220,
		DefaultCourseID: "korean-reading",
	}
	return &Service{
		policy: policy.NewEngine(cfg.MinBodyChars, cfg.MaxBodyChars),
		cfg:    cfg,
		log:    zerolog.Nop(),
	}
}

func koreanBody(minChars int) string {
	var b strings.Builder
	for b.Len() == 0 || len([]rune(b.String())) < minChars {
		b.WriteString("가나다라마바사아자차. ")
	}
	return strings.TrimSpace(b.String())
}

func TestPriorityFor(t *testing.T) {
	t.Parallel()

	if priorityFor("yonhap") >= priorityFor("chosun") {
		t.Errorf("yonhap should outrank chosun: %d vs %d", priorityFor("yonhap"), priorityFor("chosun"))
	}
	if priorityFor("  KBS ") != priorityFor("kbs") {
		t.Error("priority lookup should trim and lowercase the source key")
	}
	if priorityFor("unknown-blog") != unrankedPriority {
		t.Errorf("unranked source got priority %d", priorityFor("unknown-blog"))
	}
	if priorityFor("yonhap") >= unrankedPriority {
		t.Error("ranked sources must beat unranked ones")
	}
}

func TestPickCanonical(t *testing.T) {
	t.Parallel()

	earlier := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	later := earlier.Add(2 * time.Hour)

	highPriority := &db.DedupCandidate{ArticleID: 1, SourceKey: "yonhap", PublishedAt: later}
	lowPriority := &db.DedupCandidate{ArticleID: 2, SourceKey: "sbs", PublishedAt: earlier}

	if got := pickCanonical(highPriority, lowPriority); got != highPriority {
		t.Error("lower SOURCE_PRIORITY number should win regardless of publish time")
	}
	if got := pickCanonical(lowPriority, highPriority); got != highPriority {
		t.Error("pickCanonical should be symmetric in argument order")
	}

	a := &db.DedupCandidate{ArticleID: 3, SourceKey: "chosun", PublishedAt: earlier}
	b := &db.DedupCandidate{ArticleID: 4, SourceKey: "joongang", PublishedAt: later}
	if got := pickCanonical(a, b); got != a {
		t.Error("on a priority tie the earlier publication should win")
	}
}

func TestFindDuplicate_TitleMatch(t *testing.T) {
	t.Parallel()

	candidates := []db.DedupCandidate{
		{ArticleID: 1, SourceKey: "sbs", NormalizedTitle: "성장하는 한국 경제", Simhash: "ffffffffffffffff"},
		{ArticleID: 2, SourceKey: "other", NormalizedTitle: "다른 기사", Simhash: "ffffffffffffffff"},
	}

	got := findDuplicate("성장하는 한국 경제", "0000000000000000", candidates)
	if got == nil || got.ArticleID != 1 {
		t.Fatalf("expected title-matched candidate 1, got %+v", got)
	}
}

func TestFindDuplicate_HammingThreshold(t *testing.T) {
	t.Parallel()

	threeBits := db.DedupCandidate{ArticleID: 1, NormalizedTitle: "a", Simhash: "0000000000000007"}
	fourBits := db.DedupCandidate{ArticleID: 2, NormalizedTitle: "b", Simhash: "000000000000000f"}

	if got := findDuplicate("c", "0000000000000000", []db.DedupCandidate{threeBits}); got == nil {
		t.Error("3 differing bits should be a duplicate")
	}
	if got := findDuplicate("c", "0000000000000000", []db.DedupCandidate{fourBits}); got != nil {
		t.Errorf("4 differing bits should not be a duplicate, got %+v", got)
	}
}

func TestFindDuplicate_PrefersHigherPrioritySource(t *testing.T) {
	t.Parallel()

	candidates := []db.DedupCandidate{
		{ArticleID: 1, SourceKey: "sbs", Simhash: "0000000000000001", DedupeClusterID: "aaaa"},
		{ArticleID: 2, SourceKey: "yonhap", Simhash: "0000000000000003", DedupeClusterID: "bbbb"},
	}

	got := findDuplicate("unique", "0000000000000000", candidates)
	if got == nil || got.ArticleID != 2 {
		t.Fatalf("expected the yonhap candidate to win, got %+v", got)
	}
}

func TestFindDuplicate_NoMatch(t *testing.T) {
	t.Parallel()

	candidates := []db.DedupCandidate{
		{ArticleID: 1, NormalizedTitle: "다른 기사", Simhash: "ffffffffffffffff"},
	}
	if got := findDuplicate("제목", "0000000000000000", candidates); got != nil {
		t.Errorf("expected no duplicate, got %+v", got)
	}
}

func TestPrepare_ValidArticle(t *testing.T) {
	t.Parallel()

	s := testService()
	published := time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC)
	batch := &Batch{SourceKey: "yonhap", SourceType: "rss"}
	raw := &RawArticle{
		SourceURL:   "http://a.com/1?utm_source=feed",
		Title:       "  [속보] 성장하는 한국 경제  ",
		BodyText:    koreanBody(280),
		Section:     "경제",
		PublishedAt: &published,
	}

	a, verdict, err := s.prepare(context.Background(), batch, raw)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if !verdict.Allowed {
		t.Fatalf("expected policy pass, got reason %q", verdict.Reason)
	}
	if a.CanonicalURL != "http://a.com/1" {
		t.Errorf("canonical URL = %q, tracking params should be stripped", a.CanonicalURL)
	}
	if len(a.URLHash) != 8 {
		t.Errorf("url hash %q should be 8 hex chars", a.URLHash)
	}
	if a.Title != "[속보] 성장하는 한국 경제" {
		t.Errorf("title not whitespace-normalized: %q", a.Title)
	}
	if a.NormalizedTitle != "성장하는 한국 경제" {
		t.Errorf("normalized title = %q", a.NormalizedTitle)
	}
	if a.DifficultyLevel != "L3" {
		t.Errorf("경제 section with long Korean body should be L3, got %s (score %d)", a.DifficultyLevel, a.DifficultyScore)
	}
	if len(a.Simhash) != 16 {
		t.Errorf("simhash %q should be 16 hex chars", a.Simhash)
	}
	if !a.PublishedAt.Equal(published) {
		t.Errorf("publishedAt = %v, want %v", a.PublishedAt, published)
	}
	if a.Language != "ko" {
		t.Errorf("language = %q, want ko", a.Language)
	}
}

func TestPrepare_ValidationFailures(t *testing.T) {
	t.Parallel()

	s := testService()
	batch := &Batch{SourceKey: "yonhap", SourceType: "rss"}

	if _, _, err := s.prepare(context.Background(), batch, &RawArticle{
		SourceURL: "http://a.com/1",
		Title:     "   ",
		BodyText:  koreanBody(280),
	}); err == nil {
		t.Error("empty title should fail validation")
	}

	if _, _, err := s.prepare(context.Background(), batch, &RawArticle{
		SourceURL: "://not a url",
		Title:     "제목",
		BodyText:  koreanBody(280),
	}); err == nil {
		t.Error("unparseable URL should fail validation")
	}
}

func TestPrepare_DefaultsPublishedAtToNow(t *testing.T) {
	t.Parallel()

	s := testService()
	batch := &Batch{SourceKey: "yonhap", SourceType: "rss"}
	before := time.Now().UTC().Add(-time.Second)

	a, _, err := s.prepare(context.Background(), batch, &RawArticle{
		SourceURL: "http://a.com/1",
		Title:     "제목",
		BodyText:  koreanBody(280),
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	after := time.Now().UTC().Add(time.Second)
	if a.PublishedAt.Before(before) || a.PublishedAt.After(after) {
		t.Errorf("publishedAt %v should default to ingestion time", a.PublishedAt)
	}
}

func TestPrepare_PolicyRejection(t *testing.T) {
	t.Parallel()

	s := testService()
	batch := &Batch{SourceKey: "yonhap", SourceType: "rss"}

	_, verdict, err := s.prepare(context.Background(), batch, &RawArticle{
		SourceURL: "http://a.com/1",
		Title:     "제목",
		Section:   "정치",
		BodyText:  koreanBody(280),
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if verdict.Allowed {
		t.Fatal("politics section should be rejected")
	}
	if verdict.Reason != policy.ReasonBlockedTopicSectionOrTags {
		t.Errorf("reason = %q", verdict.Reason)
	}
}

func TestMergeReasons(t *testing.T) {
	t.Parallel()

	merged := mergeReasons(nil, "body_too_short")
	var reasons []string
	if err := json.Unmarshal(merged, &reasons); err != nil {
		t.Fatalf("merged reasons not valid JSON: %v", err)
	}
	if len(reasons) != 1 || reasons[0] != "body_too_short" {
		t.Fatalf("reasons = %v", reasons)
	}

	merged = mergeReasons(merged, "blocked_topic_title")
	if err := json.Unmarshal(merged, &reasons); err != nil {
		t.Fatalf("merged reasons not valid JSON: %v", err)
	}
	if len(reasons) != 2 {
		t.Fatalf("expected two reasons, got %v", reasons)
	}

	merged = mergeReasons(merged, "body_too_short")
	if err := json.Unmarshal(merged, &reasons); err != nil {
		t.Fatalf("merged reasons not valid JSON: %v", err)
	}
	if len(reasons) != 2 {
		t.Errorf("duplicate reason should not be appended twice: %v", reasons)
	}
}

func TestResultErrorCap(t *testing.T) {
	t.Parallel()

	r := &Result{}
	for i := 0; i < 10; i++ {
		r.recordError(fmt.Errorf("boom %d", i))
	}
	if r.Failed != 10 {
		t.Errorf("failed = %d, want 10", r.Failed)
	}
	if len(r.Errors) != maxErrorSamples {
		t.Errorf("error samples = %d, want %d", len(r.Errors), maxErrorSamples)
	}
}

func TestPatchExisting_PreservesDedupFields(t *testing.T) {
	t.Parallel()

	s := testService()
	existing := &db.Article{
		ArticleID:       7,
		URLHash:         "aaaaaaaa",
		DedupeClusterID: "bbbbbbbb",
		Status:          db.StatusActive,
		BodyText:        "old body",
	}
	prepared := &db.Article{
		URLHash:         "aaaaaaaa",
		DedupeClusterID: "aaaaaaaa",
		Status:          "",
		BodyText:        "new body",
		Title:           "새 제목",
		DifficultyLevel: "L2",
	}

	s.patchExisting(prepared, existing)

	if existing.BodyText != "new body" || existing.Title != "새 제목" {
		t.Error("content fields should be refreshed")
	}
	if existing.DedupeClusterID != "bbbbbbbb" {
		t.Error("dedupeClusterId must survive a content patch")
	}
	if existing.Status != db.StatusActive {
		t.Error("status must survive a content patch")
	}
	if existing.ArticleID != 7 {
		t.Error("identity must survive a content patch")
	}
}
