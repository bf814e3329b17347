package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchBodyText_PlainText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("서울에서  새로운 \n 전시가 열렸다."))
	}))
	defer srv.Close()

	got, err := FetchBodyText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got != "서울에서 새로운 전시가 열렸다." {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFetchBodyText_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := FetchBodyText(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestFetchBodyText_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := FetchBodyText(context.Background(), "  "); err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required-URL error, got %v", err)
	}
}
