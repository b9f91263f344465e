package folio

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS
	Author      string // Fallback author for posts without one (default "Unknown")

	Addr       string // Listen address (default ":3000")
	ContentDir string // Directory of markdown posts (default "content/blog")

	IndexTTL time.Duration // Max age of a cached index (default 5min)
	Watch    bool          // Invalidate the index when content files change

	SearchLimit  int           // Search requests allowed per IP per window (default 60)
	SearchWindow time.Duration // Search rate-limit window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Author == "" {
		c.Author = DefaultAuthor
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/blog"
	}
	if c.IndexTTL == 0 {
		c.IndexTTL = 5 * time.Minute
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = 60
	}
	if c.SearchWindow == 0 {
		c.SearchWindow = time.Minute
	}
}

// LoadConfigFromEnv reads FOLIO_* variables, after loading a .env file from
// the working directory when one exists. Unset values keep their defaults.
func LoadConfigFromEnv() SiteConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Ignoring unreadable .env file", slog.String("error", err.Error()))
	}
	cfg := SiteConfig{
		Name:         os.Getenv("FOLIO_SITE_NAME"),
		URL:          os.Getenv("FOLIO_SITE_URL"),
		Description:  os.Getenv("FOLIO_SITE_DESCRIPTION"),
		Author:       os.Getenv("FOLIO_SITE_AUTHOR"),
		Addr:         os.Getenv("FOLIO_ADDR"),
		ContentDir:   os.Getenv("FOLIO_CONTENT_DIR"),
		IndexTTL:     envDuration("FOLIO_INDEX_TTL"),
		Watch:        envBool("FOLIO_WATCH"),
		SearchLimit:  envInt("FOLIO_SEARCH_LIMIT"),
		SearchWindow: envDuration("FOLIO_SEARCH_WINDOW"),
	}
	cfg.setDefaults()
	return cfg
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithBuildOptions passes options to every index pass.
func WithBuildOptions(opts ...BuildOption) Option {
	return func(a *App) {
		a.buildOpts = append(a.buildOpts, opts...)
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("Ignoring invalid duration", slog.String("key", key), slog.String("value", v))
		return 0
	}
	return d
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring invalid integer", slog.String("key", key), slog.String("value", v))
		return 0
	}
	return n
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
