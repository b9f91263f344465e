package folio

import (
	"time"

	"github.com/eringen/folio/markdown"
)

// Post is one blog entry, built fresh from a content file on every index pass.
type Post struct {
	Slug           string    `json:"slug"`
	Title          string    `json:"title"`
	Date           string    `json:"date"`
	PublishedAt    time.Time `json:"publishedAt"`
	DateDefaulted  bool      `json:"-"`
	Author         string    `json:"author"`
	Image          string    `json:"image,omitempty"`
	Emoji          string    `json:"emoji,omitempty"`
	Preview        string    `json:"preview"`
	Tags           []string  `json:"tags"`
	Content        string    `json:"content"`
	WordCount      int       `json:"wordCount"`
	ReadingMinutes int       `json:"readingMinutes"`
	ReadingTime    string    `json:"readingTime"`
	Source         string    `json:"-"` // path of the file the post was read from
}

// PostSummary is the listing view of a post: everything but the body.
type PostSummary struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	Image       string   `json:"image,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
	Preview     string   `json:"preview"`
	Tags        []string `json:"tags"`
	ReadingTime string   `json:"readingTime"`
	Link        string   `json:"link"`
}

// Summary projects p into its listing view.
func (p Post) Summary() PostSummary {
	return PostSummary{
		Slug:        p.Slug,
		Title:       p.Title,
		Date:        p.Date,
		Author:      p.Author,
		Image:       p.Image,
		Emoji:       p.Emoji,
		Preview:     p.Preview,
		Tags:        append([]string{}, p.Tags...),
		ReadingTime: p.ReadingTime,
		Link:        PostPath(p.Slug),
	}
}

// HasTag reports whether p carries tag. Matching is exact and case-sensitive.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCount is one row of the tag frequency table.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PostDetail is a post together with its rendered body and table of contents.
type PostDetail struct {
	Post
	HTML string             `json:"html"`
	TOC  []markdown.Heading `json:"toc"`
}
