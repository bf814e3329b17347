package httpapi

import (
	"encoding/json"
	"testing"
	"time"

	"hanriver.app/readfeed/internal/db"
)

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int
	}{
		{"", 25},
		{"abc", 25},
		{"0", 25},
		{"-3", 25},
		{"10", 10},
		{"100", 100},
		{"500", 100},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.raw, 25, 100); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestArticleToView(t *testing.T) {
	t.Parallel()

	section := "경제"
	unitKey := 20260820
	published := time.Date(2026, 8, 20, 3, 0, 0, 0, time.UTC)

	a := &db.Article{
		ArticleID:          42,
		CanonicalURL:       "http://a.com/1",
		SourceKey:          "yonhap",
		Title:              "성장하는 한국 경제",
		BodyText:           "본문",
		Section:            &section,
		Tags:               json.RawMessage(`["경제","금리"]`),
		Language:           "ko",
		PublishedAt:        published,
		DifficultyLevel:    "L3",
		DifficultyScore:    80,
		ProjectedUnitIndex: &unitKey,
	}

	view := articleToView(a)
	if view.ArticleID != 42 {
		t.Errorf("articleId = %d", view.ArticleID)
	}
	if len(view.Tags) != 2 || view.Tags[0] != "경제" {
		t.Errorf("tags = %v", view.Tags)
	}
	if view.Section == nil || *view.Section != "경제" {
		t.Errorf("section = %v", view.Section)
	}
	if view.UnitKey == nil || *view.UnitKey != 20260820 {
		t.Errorf("unitKey = %v", view.UnitKey)
	}
	if !view.PublishedAt.Equal(published) {
		t.Errorf("publishedAt = %v", view.PublishedAt)
	}
}

func TestArticleToView_EmptyOptionalFields(t *testing.T) {
	t.Parallel()

	view := articleToView(&db.Article{ArticleID: 1, Language: "und"})
	if view.Tags != nil {
		t.Errorf("tags should stay nil, got %v", view.Tags)
	}
	if view.Section != nil || view.Summary != nil || view.ProjectedAt != nil {
		t.Error("optional fields should stay nil")
	}
}
