package folio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartWatcher_MissingContentDirIsSkipped(t *testing.T) {
	a := New(SiteConfig{ContentDir: filepath.Join(t.TempDir(), "missing"), Watch: true})
	a.Init(t.Context())

	require.NoError(t, a.startWatcher(t.Context()))
	idx, err := a.Cache.Index()
	require.NoError(t, err)
	require.Equal(t, 0, idx.Len())
}

func TestStartWatcher_InvalidatesCache(t *testing.T) {
	dir := writeContent(t, map[string]string{"a.md": "a"})
	a := New(SiteConfig{ContentDir: dir, Watch: true, IndexTTL: time.Hour})
	a.Init(t.Context())

	idx, err := a.Cache.Index()
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	require.NoError(t, a.startWatcher(t.Context()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644))

	require.Eventually(t, func() bool {
		idx, err := a.Cache.Index()
		return err == nil && idx.Len() == 2
	}, 3*time.Second, 25*time.Millisecond)
}

func TestStartWatcher_ContentPathIsFile(t *testing.T) {
	dir := writeContent(t, map[string]string{"blog": "file"})
	a := New(SiteConfig{ContentDir: filepath.Join(dir, "blog"), Watch: true})
	a.Init(t.Context())

	require.Error(t, a.startWatcher(t.Context()))
}
