package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Document is one raw content file read from the content directory.
type Document struct {
	Name    string // file name, e.g. "hello-world.md"
	Path    string
	Slug    string // Name without its markdown extension
	Raw     []byte
	ModTime time.Time
}

// Store reads blog documents from a flat content directory. The directory is
// the system of record; Store never writes to it.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the content directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Names returns the markdown file names in the content directory, sorted.
// A missing directory yields no names and no error.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Content directory not found, indexing zero posts", slog.String("path", s.dir))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrContentDir, s.dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || !IsMarkdownFile(name) {
			continue
		}
		if !s.isRegular(e) {
			continue
		}
		names = append(names, name)
	}
	// os.ReadDir already sorts by filename.
	return names, nil
}

// isRegular reports whether e is a regular file, following symlinks.
func (s *Store) isRegular(e fs.DirEntry) bool {
	mode := e.Type()
	path := filepath.Join(s.dir, e.Name())
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			slog.Warn("Skipping unresolvable symlink", slog.String("path", path), slog.String("error", err.Error()))
			return false
		}
		mode = info.Mode()
	}
	switch {
	case mode.IsRegular():
		return true
	case mode.IsDir():
		slog.Debug("Skipping directory", slog.String("path", path))
	default:
		slog.Debug("Skipping non-regular file", slog.String("path", path), slog.String("mode", mode.String()))
	}
	return false
}

// Documents reads every markdown document in the content directory, in
// filename order.
func (s *Store) Documents() ([]Document, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(names))
	for _, name := range names {
		doc, err := s.read(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) read(name string) (Document, error) {
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: stat %s: %w", ErrContentDir, path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read %s: %w", ErrContentDir, path, err)
	}
	return Document{
		Name:    name,
		Path:    path,
		Slug:    SlugFromFilename(name),
		Raw:     raw,
		ModTime: info.ModTime(),
	}, nil
}

// IsMarkdownFile reports whether name has a .md or .mdx extension.
func IsMarkdownFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".mdx"
}

// SlugFromFilename strips the directory and markdown extension from name.
func SlugFromFilename(name string) string {
	base := filepath.Base(name)
	if IsMarkdownFile(base) {
		return base[:len(base)-len(filepath.Ext(base))]
	}
	return base
}
