// Package snapshot writes an index to a SQLite file so that tools without a
// markdown pipeline can query the published posts and tags.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/folio"
)

// Snapshot wraps a SQLite database holding one exported index.
type Snapshot struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, ensures its directory
// exists, and creates the schema.
func Open(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	s := &Snapshot{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

func (s *Snapshot) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    published_at TEXT NOT NULL,
    author TEXT NOT NULL,
    image TEXT NOT NULL,
    emoji TEXT NOT NULL,
    preview TEXT NOT NULL,
    content TEXT NOT NULL,
    reading_time TEXT NOT NULL,
    reading_minutes INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS post_tags (
    slug TEXT NOT NULL REFERENCES posts(slug) ON DELETE CASCADE,
    tag TEXT NOT NULL,
    ord INTEGER NOT NULL,
    PRIMARY KEY (slug, tag)
);
CREATE INDEX IF NOT EXISTS post_tags_tag ON post_tags(tag);
CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    count INTEGER NOT NULL
);
`)
	return err
}

// Write replaces the snapshot contents with idx in one transaction.
func (s *Snapshot) Write(ctx context.Context, idx *folio.Index) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM post_tags`, `DELETE FROM posts`, `DELETE FROM tags`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for i, p := range idx.All() {
		_, err = tx.ExecContext(ctx, `INSERT INTO posts (slug, position, title, date, published_at, author, image, emoji, preview, content, reading_time, reading_minutes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Slug, i, p.Title, p.Date, formatTime(p), p.Author, p.Image, p.Emoji, p.Preview, p.Content, p.ReadingTime, p.ReadingMinutes)
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.Slug, err)
		}
		for ord, tag := range p.Tags {
			if _, err = tx.ExecContext(ctx, `INSERT INTO post_tags (slug, tag, ord) VALUES (?, ?, ?)`, p.Slug, tag, ord); err != nil {
				return fmt.Errorf("insert tag %s for %s: %w", tag, p.Slug, err)
			}
		}
	}
	for i, t := range idx.Tags() {
		if _, err = tx.ExecContext(ctx, `INSERT INTO tags (name, position, count) VALUES (?, ?, ?)`, t.Name, i, t.Count); err != nil {
			return fmt.Errorf("insert tag %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

func formatTime(p folio.Post) string {
	if p.PublishedAt.IsZero() {
		return ""
	}
	return p.PublishedAt.Format(time.RFC3339Nano)
}

const selectPost = `SELECT slug, title, date, published_at, author, image, emoji, preview, content, reading_time, reading_minutes FROM posts`

// ListPosts returns the exported posts in index order. If tag is non-empty,
// results are filtered to posts carrying exactly that tag.
func (s *Snapshot) ListPosts(ctx context.Context, tag string) ([]folio.Post, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.QueryContext(ctx, selectPost+` ORDER BY position`)
	} else {
		rows, err = s.db.QueryContext(ctx, selectPost+` WHERE slug IN (SELECT slug FROM post_tags WHERE tag = ?) ORDER BY position`, tag)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []folio.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].Tags, err = s.postTags(ctx, posts[i].Slug); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

// GetPost returns a single exported post by slug, or folio.ErrNotFound.
func (s *Snapshot) GetPost(ctx context.Context, slug string) (folio.Post, error) {
	row := s.db.QueryRowContext(ctx, selectPost+` WHERE slug = ?`, slug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return folio.Post{}, folio.ErrNotFound
	}
	if err != nil {
		return folio.Post{}, err
	}
	if p.Tags, err = s.postTags(ctx, slug); err != nil {
		return folio.Post{}, err
	}
	return p, nil
}

// ListTags returns the exported tag frequency table in index order.
func (s *Snapshot) ListTags(ctx context.Context) ([]folio.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, count FROM tags ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []folio.TagCount{}
	for rows.Next() {
		var t folio.TagCount
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Snapshot) postTags(ctx context.Context, slug string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM post_tags WHERE slug = ? ORDER BY ord`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(r scanner) (folio.Post, error) {
	var p folio.Post
	var publishedAt string
	err := r.Scan(&p.Slug, &p.Title, &p.Date, &publishedAt, &p.Author, &p.Image, &p.Emoji, &p.Preview, &p.Content, &p.ReadingTime, &p.ReadingMinutes)
	if err != nil {
		return folio.Post{}, err
	}
	if publishedAt != "" {
		if p.PublishedAt, err = time.Parse(time.RFC3339, publishedAt); err != nil {
			return folio.Post{}, fmt.Errorf("post %s: published_at: %w", p.Slug, err)
		}
	}
	p.WordCount = folio.WordCount(p.Content)
	return p, nil
}
