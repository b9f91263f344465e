// Package folio indexes a directory of markdown blog posts and serves
// read-only views of it: listings sorted by date, lookup by slug, tag
// filtering, a tag frequency table, and search.
//
// The pipeline (Store, ExtractFrontMatter, Normalize, Build) can be used on its
// own; App adds an Echo HTTP API, RSS and sitemap feeds, and Prometheus
// metrics on top of an IndexCache.
package folio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central folio application. It wires together the content store,
// index cache, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *IndexCache
	Metrics *Metrics

	searchLimiter *RequestLimiter
	customRoutes  []func(*App)
	buildOpts     []BuildOption
}

// New creates a new folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init builds the store, cache and routes without starting the server.
// The context bounds background work such as rate-limit sweeping.
func (a *App) Init(ctx context.Context) {
	a.Store = NewStore(a.Config.ContentDir)
	buildOpts := append([]BuildOption{
		WithDefaults(Defaults{Title: DefaultTitle, Author: a.Config.Author}),
	}, a.buildOpts...)
	a.Metrics = NewMetrics(nil)
	a.Cache = NewIndexCache(a.Store, a.Config.IndexTTL, buildOpts...).WithMetrics(a.Metrics)
	a.searchLimiter = NewRequestLimiter(ctx, a.Config.SearchLimit, a.Config.SearchWindow)

	a.Echo.HideBanner = true
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
}

// Start initializes the app, indexes the content once so problems surface at
// startup, and serves until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.Init(ctx)

	idx, err := a.Cache.Index()
	if err != nil {
		return fmt.Errorf("folio: initial index: %w", err)
	}
	if problems := idx.Problems(); len(problems) > 0 {
		slog.Warn("Content has problems", slog.Int("count", len(problems)))
	}

	if a.Config.Watch {
		if err := a.startWatcher(ctx); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Echo.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("Serving", slog.String("addr", a.Config.Addr), slog.String("content", a.Config.ContentDir))
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startWatcher runs a ContentWatcher on the content directory until ctx is
// done. A missing directory is not an error: the site serves zero posts, the
// same as without watching.
func (a *App) startWatcher(ctx context.Context) error {
	info, err := os.Stat(a.Config.ContentDir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Content directory not found, not watching", slog.String("path", a.Config.ContentDir))
		return nil
	}
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", a.Config.ContentDir)
	}
	if err != nil {
		return fmt.Errorf("folio: watch content: %w", err)
	}
	w, err := NewContentWatcher(a.Config.ContentDir, a.Cache, 0)
	if err != nil {
		return fmt.Errorf("folio: watch content: %w", err)
	}
	go w.Run(ctx)
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	api := e.Group("/api")
	api.GET("/posts", a.handleListPosts)
	api.GET("/posts/:slug", a.handleGetPost)
	api.GET("/posts/:slug/related", a.handleRelated)
	api.GET("/tags", a.handleListTags)
	api.GET("/tags/:tag", a.handlePostsByTag)
	api.GET("/search", a.handleSearch, a.rateLimit(a.searchLimiter))

	e.GET("/blog/:slug/content", a.handlePostContent)
}
