package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"hanriver.app/readfeed/internal/auth"
)

// bearerToken extracts the token from an Authorization header, or returns
// an empty string.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// adminAuth gates admin routes behind the configured bcrypt token hash.
// An empty hash disables admin access entirely.
func (s *Server) adminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if strings.TrimSpace(s.adminTokenHash) == "" {
			return fail(c, http.StatusForbidden, "admin access is not configured", nil)
		}

		token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			return fail(c, http.StatusUnauthorized, "missing bearer token", nil)
		}
		if !auth.VerifyToken(token, s.adminTokenHash) {
			return fail(c, http.StatusUnauthorized, "invalid token", nil)
		}
		return next(c)
	}
}
