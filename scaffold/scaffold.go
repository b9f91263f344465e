// Package scaffold provides embedded template files for the folio CLI:
// a starter site layout and the skeleton of a new post.
package scaffold

import "embed"

// Templates contains the starter site files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Post is the front matter skeleton written by "folio post".
//
//go:embed post/post.md.tmpl
var Post string
