package folio

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/eringen/folio/markdown"
)

// Index is one consistent, read-only view of the content directory. It is
// built wholesale by Build and never updated in place; rebuild to pick up
// changes.
type Index struct {
	dir      string
	posts    []Post
	bySlug   map[string]int
	tags     []TagCount
	problems []error
	builtAt  time.Time
	took     time.Duration
}

type buildConfig struct {
	normalize NormalizeOptions
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithDefaults overrides the fallback title and author.
func WithDefaults(d Defaults) BuildOption {
	return func(c *buildConfig) {
		c.normalize.Defaults = d
	}
}

// WithClock sets the time used for posts without a date.
func WithClock(now func() time.Time) BuildOption {
	return func(c *buildConfig) {
		c.normalize.Now = now
	}
}

// BuildDir indexes the content directory at dir.
func BuildDir(dir string, opts ...BuildOption) (*Index, error) {
	return Build(NewStore(dir), opts...)
}

// Build reads every document from store and indexes it.
//
// The returned error is non-nil only when the directory itself cannot be
// read. Documents that fail to parse, or that repeat an earlier slug, are left
// out of the index and listed by Problems.
func Build(store *Store, opts ...BuildOption) (*Index, error) {
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.normalize = cfg.normalize.withDefaults()

	start := time.Now()
	docs, err := store.Documents()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		dir:    store.Dir(),
		bySlug: make(map[string]int, len(docs)),
	}

	// Slugs are claimed in filename order by the first document that parses.
	claimed := make(map[string]string, len(docs))
	posts := make([]Post, 0, len(docs))
	for _, doc := range docs {
		if keptPath, dup := claimed[doc.Slug]; dup {
			idx.report(&DuplicateSlugError{Slug: doc.Slug, Path: doc.Path, KeptPath: keptPath})
			continue
		}
		fm, err := ExtractFrontMatter(doc.Raw)
		if err != nil {
			idx.report(&ContentParseError{Path: doc.Path, Slug: doc.Slug, Err: err})
			continue
		}
		claimed[doc.Slug] = doc.Path

		p := Normalize(doc.Slug, fm.Fields, fm.Body, cfg.normalize)
		p.Source = doc.Path
		if p.DateDefaulted {
			slog.Warn("Post has no date, using build time", slog.String("path", doc.Path), slog.String("slug", p.Slug))
		} else if p.PublishedAt.IsZero() {
			slog.Warn("Post date not parseable, sorting it last", slog.String("path", doc.Path), slog.String("date", p.Date))
		}
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
	for i, p := range posts {
		idx.bySlug[p.Slug] = i
	}
	idx.posts = posts
	idx.tags = countTags(posts)
	idx.builtAt = time.Now()
	idx.took = idx.builtAt.Sub(start)

	slog.Info("Content indexed",
		slog.String("path", idx.dir),
		slog.Int("posts", len(posts)),
		slog.Int("tags", len(idx.tags)),
		slog.Int("problems", len(idx.problems)),
		slog.Duration("took", idx.took))
	return idx, nil
}

func (idx *Index) report(err error) {
	slog.Error("Document excluded from index", slog.String("error", err.Error()))
	idx.problems = append(idx.problems, err)
}

// countTags builds the tag frequency table. Ties keep the order in which
// tags first appear in the date-sorted posts.
func countTags(posts []Post) []TagCount {
	pos := make(map[string]int)
	var table []TagCount
	for _, p := range posts {
		for _, t := range p.Tags {
			if i, ok := pos[t]; ok {
				table[i].Count++
				continue
			}
			pos[t] = len(table)
			table = append(table, TagCount{Name: t, Count: 1})
		}
	}
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Count > table[j].Count
	})
	if table == nil {
		table = []TagCount{}
	}
	return table
}

// Dir returns the content directory the index was built from.
func (idx *Index) Dir() string { return idx.dir }

// BuiltAt returns when the index pass finished.
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

// Took returns how long the index pass ran.
func (idx *Index) Took() time.Duration { return idx.took }

// Len returns the number of indexed posts.
func (idx *Index) Len() int { return len(idx.posts) }

// Problems returns the per-document failures of the pass: *ContentParseError
// and *DuplicateSlugError values. Use errors.Join to report them as one.
func (idx *Index) Problems() []error {
	return append([]error(nil), idx.problems...)
}

// All returns every post, most recent first.
func (idx *Index) All() []Post {
	out := make([]Post, len(idx.posts))
	for i, p := range idx.posts {
		out[i] = clonePost(p)
	}
	return out
}

// Summaries returns the listing view of All.
func (idx *Index) Summaries() []PostSummary {
	return summarize(idx.posts)
}

// BySlug returns the post with the given slug, or ErrNotFound.
func (idx *Index) BySlug(slug string) (Post, error) {
	i, ok := idx.bySlug[slug]
	if !ok {
		return Post{}, ErrNotFound
	}
	return clonePost(idx.posts[i]), nil
}

// ByTag returns the posts carrying tag, most recent first. Matching is exact
// and case-sensitive. An unknown tag yields an empty slice.
func (idx *Index) ByTag(tag string) []Post {
	out := []Post{}
	for _, p := range idx.posts {
		if p.HasTag(tag) {
			out = append(out, clonePost(p))
		}
	}
	return out
}

// Tags returns the tag frequency table, most used first.
func (idx *Index) Tags() []TagCount {
	return append([]TagCount{}, idx.tags...)
}

// HasTag reports whether any post carries tag.
func (idx *Index) HasTag(tag string) bool {
	for _, t := range idx.tags {
		if t.Name == tag {
			return true
		}
	}
	return false
}

// Search returns the posts whose title, preview or any tag contains query,
// ignoring case. An empty query matches every post.
func (idx *Index) Search(query string) []Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return idx.All()
	}
	out := []Post{}
	for _, p := range idx.posts {
		if matches(p, q) {
			out = append(out, clonePost(p))
		}
	}
	return out
}

func matches(p Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Preview), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Related returns up to limit posts sharing at least one tag with the post
// identified by slug, most recent first. limit <= 0 means no limit.
func (idx *Index) Related(slug string, limit int) ([]Post, error) {
	current, err := idx.BySlug(slug)
	if err != nil {
		return nil, err
	}
	related := FilterRelatedPosts(current, idx.posts)
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	for i := range related {
		related[i] = clonePost(related[i])
	}
	return related, nil
}

// Detail returns the post with its body rendered to HTML and its table of
// contents.
func (idx *Index) Detail(slug string) (PostDetail, error) {
	p, err := idx.BySlug(slug)
	if err != nil {
		return PostDetail{}, err
	}
	html, toc, err := markdown.Convert(p.Content)
	if err != nil {
		return PostDetail{}, fmt.Errorf("render %s: %w", slug, err)
	}
	return PostDetail{Post: p, HTML: html, TOC: toc}, nil
}

func clonePost(p Post) Post {
	p.Tags = append([]string{}, p.Tags...)
	return p
}

func summarize(posts []Post) []PostSummary {
	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = p.Summary()
	}
	return out
}
