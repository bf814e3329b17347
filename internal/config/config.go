package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"RF_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"RF_DB_MAX_CONNS" default:"8"`

	// Body length policy. MaxBodyChars of 0 disables the upper bound;
	// snippet-style deployments set it to 500.
	MinBodyChars int `envconfig:"RF_MIN_BODY_CHARS" default:"220"`
	MaxBodyChars int `envconfig:"RF_MAX_BODY_CHARS" default:"0"`

	DefaultCourseID string `envconfig:"RF_DEFAULT_COURSE_ID" default:"korean-reading"`

	// Bcrypt hash of the admin API token. Admin endpoints are disabled
	// when empty.
	AdminTokenBcrypt string `envconfig:"RF_ADMIN_TOKEN_BCRYPT" default:""`

	// Fetch article bodies through the reader when a payload arrives
	// without body_text or body_html.
	ReaderFetchEnabled bool `envconfig:"RF_READER_FETCH_ENABLED" default:"false"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("RF_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("RF_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("RF_DB_MIN_CONNS (%d) cannot exceed RF_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.MinBodyChars < 1 {
		return fmt.Errorf("RF_MIN_BODY_CHARS must be >= 1")
	}
	if c.MaxBodyChars < 0 {
		return fmt.Errorf("RF_MAX_BODY_CHARS must be >= 0")
	}
	if c.MaxBodyChars > 0 && c.MaxBodyChars <= c.MinBodyChars {
		return fmt.Errorf("RF_MAX_BODY_CHARS (%d) must exceed RF_MIN_BODY_CHARS (%d)", c.MaxBodyChars, c.MinBodyChars)
	}
	if strings.TrimSpace(c.DefaultCourseID) == "" {
		return fmt.Errorf("RF_DEFAULT_COURSE_ID is required")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
