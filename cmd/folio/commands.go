package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/eringen/folio"
	"github.com/eringen/folio/snapshot"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr  string `help:"Listen address (overrides FOLIO_ADDR)"`
	Watch bool   `help:"Rebuild the index when content files change"`
}

func (s *ServeCmd) Run(root *CLI) error {
	cfg := root.siteConfig()
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	cfg.Watch = cfg.Watch || s.Watch

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return folio.New(cfg).Start(ctx)
}

// ListCmd implements the 'list' command.
type ListCmd struct {
	Tag string `short:"t" help:"Only posts carrying this tag (exact match)"`
}

func (l *ListCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	posts := idx.All()
	if l.Tag != "" {
		posts = idx.ByTag(l.Tag)
	}
	return printPosts(root, posts)
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Slug string `arg:"" help:"Post slug (file name without extension)"`
	HTML bool   `help:"Print the rendered HTML instead of the markdown body"`
}

func (s *ShowCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	detail, err := idx.Detail(s.Slug)
	if errors.Is(err, folio.ErrNotFound) {
		return fmt.Errorf("no post with slug %q in %s", s.Slug, idx.Dir())
	}
	if err != nil {
		return err
	}
	if root.JSON {
		return writeJSON(os.Stdout, detail)
	}

	fmt.Printf("%s\n%s · %s · %s\n", detail.Title, detail.Date, detail.Author, detail.ReadingTime)
	if len(detail.Tags) > 0 {
		fmt.Printf("tags: %s\n", folio.JoinTags(detail.Tags))
	}
	for _, h := range detail.TOC {
		fmt.Printf("%*s- %s (#%s)\n", (h.Level-2)*2, "", h.Text, h.ID)
	}
	fmt.Println()
	if s.HTML {
		fmt.Println(detail.HTML)
	} else {
		fmt.Println(detail.Content)
	}
	return nil
}

// TagsCmd implements the 'tags' command.
type TagsCmd struct{}

func (t *TagsCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	tags := idx.Tags()
	if root.JSON {
		return writeJSON(os.Stdout, tags)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TAG\tPOSTS")
	for _, tc := range tags {
		fmt.Fprintf(w, "%s\t%d\n", tc.Name, tc.Count)
	}
	return w.Flush()
}

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query string `arg:"" help:"Case-insensitive text to look for"`
}

func (s *SearchCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	return printPosts(root, idx.Search(s.Query))
}

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	problems := idx.Problems()
	for _, p := range idx.All() {
		if p.DateDefaulted {
			fmt.Printf("warning: %s has no date\n", p.Source)
		} else if p.PublishedAt.IsZero() {
			fmt.Printf("warning: %s has an unparseable date %q\n", p.Source, p.Date)
		}
	}
	if len(problems) == 0 {
		fmt.Printf("%d posts OK\n", idx.Len())
		return nil
	}
	for _, p := range problems {
		fmt.Printf("error: %v\n", p)
	}
	return fmt.Errorf("%d of %d documents excluded: %w", len(problems), idx.Len()+len(problems), errors.Join(problems...))
}

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	DB string `help:"SQLite file to write" default:"data/folio.db"`
}

func (e *ExportCmd) Run(root *CLI) error {
	idx, _, err := root.index()
	if err != nil {
		return err
	}
	snap, err := snapshot.Open(e.DB)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer snap.Close()
	if err := snap.Write(context.Background(), idx); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Printf("exported %d posts and %d tags to %s\n", idx.Len(), len(idx.Tags()), e.DB)
	return nil
}

func printPosts(root *CLI, posts []folio.Post) error {
	if root.JSON {
		summaries := make([]folio.PostSummary, len(posts))
		for i, p := range posts {
			summaries[i] = p.Summary()
		}
		return writeJSON(os.Stdout, summaries)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSLUG\tTITLE\tREADING\tTAGS")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Date, p.Slug, p.Title, p.ReadingTime, folio.JoinTags(p.Tags))
	}
	return w.Flush()
}
