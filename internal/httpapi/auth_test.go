package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"hanriver.app/readfeed/internal/auth"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Bearer   abc123  ", "abc123"},
		{"Basic abc123", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := bearerToken(tt.header); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func adminAuthTest(t *testing.T, hash, header string) int {
	t.Helper()

	s := &Server{adminTokenHash: hash, logger: zerolog.Nop()}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/projection/stats", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := s.adminAuth(func(c echo.Context) error {
		return success(c, map[string]string{"ok": "yes"})
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec.Code
}

func TestAdminAuth(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashToken("sekrit")
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}

	if code := adminAuthTest(t, hash, "Bearer sekrit"); code != http.StatusOK {
		t.Errorf("valid token got status %d", code)
	}
	if code := adminAuthTest(t, hash, "Bearer wrong"); code != http.StatusUnauthorized {
		t.Errorf("invalid token got status %d", code)
	}
	if code := adminAuthTest(t, hash, ""); code != http.StatusUnauthorized {
		t.Errorf("missing token got status %d", code)
	}
	if code := adminAuthTest(t, "", "Bearer sekrit"); code != http.StatusForbidden {
		t.Errorf("unconfigured admin access got status %d", code)
	}
}
