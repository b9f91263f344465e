package folio

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

// ErrContentDir wraps filesystem failures on the content directory other than
// the directory being absent.
var ErrContentDir = errors.New("content directory unreadable")

// ErrMalformedFrontMatter is wrapped by every front matter extraction failure.
var ErrMalformedFrontMatter = errors.New("malformed front matter")

// ContentParseError reports a document excluded from the index because its
// front matter could not be parsed.
type ContentParseError struct {
	Path string
	Slug string
	Err  error
}

func (e *ContentParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ContentParseError) Unwrap() error { return e.Err }

// DuplicateSlugError reports a document excluded because an earlier file
// (in filename order) already claimed its slug.
type DuplicateSlugError struct {
	Slug     string
	Path     string
	KeptPath string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %q: %s ignored, %s kept", e.Slug, e.Path, e.KeptPath)
}
