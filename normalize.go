package folio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WordsPerMinute is the fixed reading speed behind every reading-time estimate.
const WordsPerMinute = 200

const (
	DefaultTitle  = "Untitled"
	DefaultAuthor = "Unknown"
)

// Defaults holds the values used for front matter fields a document omits.
// Image and emoji have no default: absent means "".
type Defaults struct {
	Title  string
	Author string
}

// DefaultDefaults returns the stock fallbacks.
func DefaultDefaults() Defaults {
	return Defaults{Title: DefaultTitle, Author: DefaultAuthor}
}

// NormalizeOptions controls defaulting. Now supplies the date of posts that
// declare none; it is a parameter so builds can be made reproducible.
type NormalizeOptions struct {
	Defaults Defaults
	Now      func() time.Time
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.Defaults.Title == "" {
		o.Defaults.Title = DefaultTitle
	}
	if o.Defaults.Author == "" {
		o.Defaults.Author = DefaultAuthor
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// previewKeys are checked in order for the teaser text.
var previewKeys = []string{"preview", "excerpt", "description"}

// dateLayouts are tried in order when parsing a string date.
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Normalize turns the front matter of one document into a Post. The slug is
// always the filename-derived one passed in; a "slug" field is ignored.
func Normalize(slug string, fields map[string]any, body string, opts NormalizeOptions) Post {
	opts = opts.withDefaults()

	p := Post{
		Slug:    slug,
		Title:   stringField(fields, "title"),
		Author:  stringField(fields, "author"),
		Image:   stringField(fields, "image"),
		Emoji:   stringField(fields, "emoji"),
		Tags:    tagsField(fields["tags"]),
		Content: body,
	}
	if p.Title == "" {
		p.Title = opts.Defaults.Title
	}
	if p.Author == "" {
		p.Author = opts.Defaults.Author
	}
	for _, key := range previewKeys {
		if v := stringField(fields, key); v != "" {
			p.Preview = v
			break
		}
	}

	p.Date, p.PublishedAt = dateField(fields["date"])
	if p.Date == "" {
		now := opts.Now()
		p.Date = now.Format(time.RFC3339)
		p.PublishedAt = now
		p.DateDefaulted = true
	}

	p.WordCount = WordCount(body)
	p.ReadingMinutes = ReadingMinutes(p.WordCount)
	p.ReadingTime = FormatReadingTime(p.ReadingMinutes)
	return p
}

// WordCount counts whitespace-separated words in body.
func WordCount(body string) int {
	return len(strings.Fields(body))
}

// ReadingMinutes is ceil(words / WordsPerMinute).
func ReadingMinutes(words int) int {
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// FormatReadingTime renders minutes as "N min read".
func FormatReadingTime(minutes int) string {
	return strconv.Itoa(minutes) + " min read"
}

// ParseDate parses s with the accepted date layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case time.Time:
		return formatDate(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	case bool, int, int64, float64, uint64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// dateField returns the display string and the parsed time of a date value.
// An unparseable date keeps its raw string and a zero time.
func dateField(v any) (string, time.Time) {
	switch d := v.(type) {
	case nil:
		return "", time.Time{}
	case time.Time:
		return formatDate(d), d
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return "", time.Time{}
		}
		t, _ := ParseDate(s)
		return s, t
	default:
		s := fmt.Sprint(d)
		t, _ := ParseDate(s)
		return s, t
	}
}

// formatDate renders midnight timestamps as a bare date.
func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// tagsField accepts a sequence of scalars or a comma-delimited string.
// Order is preserved; blanks and repeats are dropped.
func tagsField(v any) []string {
	var raw []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			switch v := item.(type) {
			case nil:
			case time.Time:
				raw = append(raw, formatDate(v))
			default:
				raw = append(raw, fmt.Sprint(v))
			}
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}

	tags := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
