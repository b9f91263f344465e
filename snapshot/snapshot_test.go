package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/folio"
)

func buildIndex(t *testing.T, files map[string]string) *folio.Index {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	idx, err := folio.BuildDir(dir)
	require.NoError(t, err)
	return idx
}

func openTest(t *testing.T) *Snapshot {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "folio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteAndRead(t *testing.T) {
	ctx := context.Background()
	idx := buildIndex(t, map[string]string{
		"a.md": "---\ntitle: Alpha\ndate: 2024-01-01\ntags: [go, rust]\nemoji: \"🦀\"\n---\nfirst body\n",
		"b.md": "---\ntitle: Beta\ndate: 2024-06-01T10:30:00Z\ntags: [rust]\n---\nsecond\n",
	})
	s := openTest(t)
	require.NoError(t, s.Write(ctx, idx))

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, "b", posts[0].Slug)
	require.Equal(t, "a", posts[1].Slug)

	want, err := idx.BySlug("a")
	require.NoError(t, err)
	got := posts[1]
	require.Equal(t, want.Title, got.Title)
	require.Equal(t, want.Date, got.Date)
	require.True(t, want.PublishedAt.Equal(got.PublishedAt))
	require.Equal(t, want.Tags, got.Tags)
	require.Equal(t, want.Emoji, got.Emoji)
	require.Equal(t, want.Content, got.Content)
	require.Equal(t, want.WordCount, got.WordCount)
	require.Equal(t, want.ReadingTime, got.ReadingTime)

	b, err := s.GetPost(ctx, "b")
	require.NoError(t, err)
	require.True(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC).Equal(b.PublishedAt))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Equal(t, idx.Tags(), tags)
}

func TestListPostsByTag(t *testing.T) {
	ctx := context.Background()
	idx := buildIndex(t, map[string]string{
		"a.md": "---\ndate: 2024-01-01\ntags: [go, rust]\n---\n",
		"b.md": "---\ndate: 2024-06-01\ntags: [rust]\n---\n",
	})
	s := openTest(t)
	require.NoError(t, s.Write(ctx, idx))

	posts, err := s.ListPosts(ctx, "go")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "a", posts[0].Slug)

	posts, err = s.ListPosts(ctx, "Go")
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestGetPostNotFound(t *testing.T) {
	s := openTest(t)
	_, err := s.GetPost(context.Background(), "missing")
	require.ErrorIs(t, err, folio.ErrNotFound)
}

func TestWriteReplacesContents(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	first := buildIndex(t, map[string]string{
		"a.md": "---\ntags: [go]\n---\n",
		"b.md": "---\ntags: [web]\n---\n",
	})
	require.NoError(t, s.Write(ctx, first))
	require.NoError(t, s.Write(ctx, first))

	second := buildIndex(t, map[string]string{"c.md": "---\ntags: [css]\n---\n"})
	require.NoError(t, s.Write(ctx, second))

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "c", posts[0].Slug)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Equal(t, []folio.TagCount{{Name: "css", Count: 1}}, tags)
}

func TestWriteEmptyIndex(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.Write(ctx, buildIndex(t, nil)))

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, posts)
	require.Empty(t, posts)
}
