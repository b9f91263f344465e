package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/eringen/folio"
)

// version is set at build time via ldflags.
var version = "dev"

// CLI is the root command. Flags override FOLIO_* environment variables and
// the .env file.
type CLI struct {
	ContentDir string           `short:"d" help:"Directory of markdown posts (overrides FOLIO_CONTENT_DIR)"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	JSON       bool             `help:"Print results as JSON"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve  ServeCmd  `cmd:"" help:"Serve the read API, feeds and metrics"`
	List   ListCmd   `cmd:"" help:"List posts, most recent first"`
	Show   ShowCmd   `cmd:"" help:"Show one post"`
	Tags   TagsCmd   `cmd:"" help:"Print the tag frequency table"`
	Search SearchCmd `cmd:"" help:"Search titles, previews and tags"`
	Check  CheckCmd  `cmd:"" help:"Index the content and report broken documents"`
	Export ExportCmd `cmd:"" help:"Write the index to a SQLite snapshot"`
	New    NewCmd    `cmd:"" help:"Create a new folio site"`
	Post   PostCmd   `cmd:"" help:"Create a new post skeleton"`
}

// AfterApply runs after flag parsing; sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// siteConfig merges environment configuration with command-line flags.
func (c *CLI) siteConfig() folio.SiteConfig {
	cfg := folio.LoadConfigFromEnv()
	if c.ContentDir != "" {
		cfg.ContentDir = c.ContentDir
	}
	return cfg
}

// index builds the content index described by the configuration.
func (c *CLI) index() (*folio.Index, folio.SiteConfig, error) {
	cfg := c.siteConfig()
	idx, err := folio.BuildDir(cfg.ContentDir, folio.WithDefaults(folio.Defaults{
		Title:  folio.DefaultTitle,
		Author: cfg.Author,
	}))
	return idx, cfg, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("folio"),
		kong.Description("Index and serve a directory of markdown blog posts"),
		kong.UsageOnError(),
		kong.Vars{"version": "folio " + version},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
