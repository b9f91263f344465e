// Package markdown renders post bodies to HTML and extracts their table of
// contents.
package markdown

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Heading levels listed in a table of contents. Level 1 is the post title.
const (
	MinTOCLevel = 2
	MaxTOCLevel = 4
)

// Heading is one table-of-contents entry. ID matches the id attribute the
// renderer puts on the heading element.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Raw HTML in a body is dropped from the output, and goldmark filters
// dangerous link destinations.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

func parse(source []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(source))
}

// Convert renders body and collects its headings from a single parse.
func Convert(body string) (string, []Heading, error) {
	source := []byte(body)
	doc := parse(source)
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return "", nil, err
	}
	return buf.String(), headings(doc, source), nil
}

// Render returns the HTML for body.
func Render(body string) (string, error) {
	html, _, err := Convert(body)
	return html, err
}

// TableOfContents lists the level 2 to 4 headings of body in document order.
func TableOfContents(body string) []Heading {
	source := []byte(body)
	return headings(parse(source), source)
}

func headings(doc gmast.Node, source []byte) []Heading {
	toc := []Heading{}
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		if h.Level >= MinTOCLevel && h.Level <= MaxTOCLevel {
			entry := Heading{Level: h.Level, Text: nodeText(h, source)}
			if id, ok := h.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					entry.ID = string(b)
				}
			}
			toc = append(toc, entry)
		}
		return gmast.WalkSkipChildren, nil
	})
	return toc
}

// PlainText returns the text content of body with markup removed and runs of
// whitespace collapsed.
func PlainText(body string) string {
	source := []byte(body)
	return strings.Join(strings.Fields(nodeText(parse(source), source)), " ")
}

// Excerpt returns PlainText(body) cut at a word boundary to at most max runes.
func Excerpt(body string, max int) string {
	plain := []rune(PlainText(body))
	if max <= 0 || len(plain) <= max {
		return string(plain)
	}
	cut := string(plain[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

func nodeText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			if c.Type() == gmast.TypeBlock && b.Len() > 0 {
				b.WriteByte(' ')
			}
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		case *gmast.CodeBlock, *gmast.FencedCodeBlock:
			lines := t.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// Component returns a templ.Component that renders body as HTML.
func Component(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := Render(body)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	})
}
