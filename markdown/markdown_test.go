package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, input string) string {
	t.Helper()
	got, err := Render(input)
	if err != nil {
		t.Fatalf("Render(%q) error: %v", input, err)
	}
	return got
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<p><strong>bold</strong></p>\n"},
		{"__bold__", "<p><strong>bold</strong></p>\n"},
		{"*italic*", "<p><em>italic</em></p>\n"},
		{"text **bold *italic* text** more", "<p>text <strong>bold <em>italic</em> text</strong> more</p>\n"},
		{"use `fmt.Println` here", "<p>use <code>fmt.Println</code> here</p>\n"},
		{"`**not bold**`", "<p><code>**not bold**</code></p>\n"},
		{"~~gone~~", "<p><del>gone</del></p>\n"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLinkWithUnderscoresInURL(t *testing.T) {
	input := "[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)"
	want := `<a href="https://en.wikipedia.org/wiki/Some_Article_Title">Wikipedia</a>`
	if got := render(t, input); !strings.Contains(got, want) {
		t.Errorf("Render(%q)\n  got:  %q\n  want: %q", input, got, want)
	}
}

func TestRenderHeadingsGetIDs(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Heading 1", `<h1 id="heading-1">Heading 1</h1>` + "\n"},
		{"## Getting Started", `<h2 id="getting-started">Getting Started</h2>` + "\n"},
		{"### Heading 3", `<h3 id="heading-3">Heading 3</h3>` + "\n"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if got != tt.expected {
			t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render(t, "```\ncode here\n```")
	if !strings.Contains(got, "<pre><code>") {
		t.Errorf("code block should render as <pre><code>: %q", got)
	}
	if !strings.Contains(got, "code here") {
		t.Errorf("code block missing content: %q", got)
	}
}

func TestRenderCodeBlockWithLanguage(t *testing.T) {
	got := render(t, "```go\nfmt.Println(\"hello\")\n```")
	if !strings.Contains(got, `class="language-go"`) {
		t.Errorf("code block should have language-go class: %q", got)
	}
	if !strings.Contains(got, "fmt.Println(&quot;hello&quot;)") {
		t.Errorf("code block content should be escaped: %q", got)
	}
}

func TestRenderDropsRawHTML(t *testing.T) {
	got := render(t, "<script>alert(1)</script>\n\nafter")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw HTML should not reach the output: %q", got)
	}
	if !strings.Contains(got, "<p>after</p>") {
		t.Errorf("text after raw HTML should still render: %q", got)
	}
}

func TestRenderFiltersDangerousLinks(t *testing.T) {
	got := render(t, "[click](javascript:alert(1))")
	if strings.Contains(got, "javascript:") {
		t.Errorf("javascript: destination should be filtered: %q", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t, "| a | b |\n|---|---|\n| 1 | 2 |\n")
	if !strings.Contains(got, "<table>") || !strings.Contains(got, "<td>1</td>") {
		t.Errorf("GFM table should render: %q", got)
	}
}

func TestTableOfContents(t *testing.T) {
	input := "# Title\n\n## Getting Started\n\ntext\n\n### Install\n\n#### Linux\n\n##### Deep\n\n## Getting Started\n"
	toc := TableOfContents(input)

	want := []Heading{
		{Level: 2, Text: "Getting Started", ID: "getting-started"},
		{Level: 3, Text: "Install", ID: "install"},
		{Level: 4, Text: "Linux", ID: "linux"},
		{Level: 2, Text: "Getting Started", ID: "getting-started-1"},
	}
	if len(toc) != len(want) {
		t.Fatalf("TableOfContents returned %d entries, want %d: %+v", len(toc), len(want), toc)
	}
	for i := range want {
		if toc[i] != want[i] {
			t.Errorf("toc[%d] = %+v, want %+v", i, toc[i], want[i])
		}
	}
}

func TestTableOfContentsEmpty(t *testing.T) {
	toc := TableOfContents("just a paragraph")
	if toc == nil || len(toc) != 0 {
		t.Errorf("expected empty non-nil toc, got %#v", toc)
	}
}

func TestConvertIDsMatchTOC(t *testing.T) {
	html, toc, err := Convert("## Why Go\n\nbecause\n")
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if len(toc) != 1 {
		t.Fatalf("expected one heading, got %+v", toc)
	}
	if !strings.Contains(html, `id="`+toc[0].ID+`"`) {
		t.Errorf("rendered heading id should match toc id %q: %q", toc[0].ID, html)
	}
}

func TestPlainText(t *testing.T) {
	input := "# Title\n\nHello **world**.\n\n- one\n- two\n"
	want := "Title Hello world. one two"
	if got := PlainText(input); got != want {
		t.Errorf("PlainText(%q) = %q, want %q", input, got, want)
	}
}

func TestPlainTextEmpty(t *testing.T) {
	if got := PlainText(""); got != "" {
		t.Errorf("PlainText(\"\") = %q, want empty", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		input    string
		max      int
		expected string
	}{
		{"one two three four", 9, "one two…"},
		{"one two", 50, "one two"},
		{"one two", 0, "one two"},
		{"**bold** text", 40, "bold text"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.input, tt.max); got != tt.expected {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
		}
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Component("## Hi").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Component render error: %v", err)
	}
	if got := buf.String(); got != `<h2 id="hi">Hi</h2>`+"\n" {
		t.Errorf("Component rendered %q", got)
	}
}
