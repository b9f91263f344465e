package folio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestIndexCache_ReusesIndexWithinTTL(t *testing.T) {
	dir := writeContent(t, map[string]string{"a.md": "a"})
	cache := NewIndexCache(NewStore(dir), time.Hour)

	first, err := cache.Index()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644))

	second, err := cache.Index()
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, second.Len())
}

func TestIndexCache_Invalidate(t *testing.T) {
	dir := writeContent(t, map[string]string{"a.md": "a"})
	cache := NewIndexCache(NewStore(dir), time.Hour)

	first, err := cache.Index()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644))

	cache.Invalidate()
	second, err := cache.Index()
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Equal(t, 2, second.Len())
}

func TestIndexCache_ExpiresAfterTTL(t *testing.T) {
	dir := writeContent(t, map[string]string{"a.md": "a"})
	cache := NewIndexCache(NewStore(dir), 20*time.Millisecond)

	first, err := cache.Index()
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	second, err := cache.Index()
	require.NoError(t, err)
	require.NotSame(t, first, second)
}

func TestIndexCache_PassesBuildOptions(t *testing.T) {
	dir := writeContent(t, map[string]string{"a.md": "a"})
	cache := NewIndexCache(NewStore(dir), time.Hour, WithDefaults(Defaults{Author: "Cache Author"}))

	idx, err := cache.Index()
	require.NoError(t, err)
	p, err := idx.BySlug("a")
	require.NoError(t, err)
	require.Equal(t, "Cache Author", p.Author)
}

func TestIndexCache_ErrorIsNotCached(t *testing.T) {
	dir := writeContent(t, map[string]string{"blog": "file"})
	m := NewMetrics(nil)
	cache := NewIndexCache(NewStore(filepath.Join(dir, "blog")), time.Hour).WithMetrics(m)

	_, err := cache.Index()
	require.ErrorIs(t, err, ErrContentDir)
	_, err = cache.Index()
	require.ErrorIs(t, err, ErrContentDir)
	require.Equal(t, 2.0, testutil.ToFloat64(m.builds.WithLabelValues("error")))
}

func TestMetrics_ObserveBuild(t *testing.T) {
	dir := writeContent(t, map[string]string{
		"a.md":   "---\ntags: [go, web]\n---\n",
		"b.md":   "---\ntags: [go]\n---\n",
		"bad.md": "---\nx: [\n---\n",
	})
	m := NewMetrics(nil)
	cache := NewIndexCache(NewStore(dir), time.Hour).WithMetrics(m)

	_, err := cache.Index()
	require.NoError(t, err)

	require.Equal(t, 1.0, testutil.ToFloat64(m.builds.WithLabelValues("ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.posts))
	require.Equal(t, 2.0, testutil.ToFloat64(m.tags))
	require.Equal(t, 1.0, testutil.ToFloat64(m.problems))

	expected := `
# HELP folio_indexed_posts Posts in the current index
# TYPE folio_indexed_posts gauge
folio_indexed_posts 2
`
	require.NoError(t, testutil.GatherAndCompare(m.reg, strings.NewReader(expected), "folio_indexed_posts"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() { m.observeBuild(nil, nil) })
}
