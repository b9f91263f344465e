package folio

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies the syntax of a front matter block.
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FrontMatter is a document split into its metadata fields and body.
type FrontMatter struct {
	Format Format
	Fields map[string]any
	Body   string
}

var delimiters = []struct {
	marker string
	format Format
}{
	{"---", FormatYAML},
	{"+++", FormatTOML},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractFrontMatter splits raw into front matter fields and body.
//
// A document that does not open with "---" (YAML) or "+++" (TOML) has no front
// matter: Fields is empty and Body is the input unchanged. Every failure wraps
// ErrMalformedFrontMatter.
func ExtractFrontMatter(raw []byte) (FrontMatter, error) {
	block, body, format, err := splitFrontMatter(raw)
	if err != nil {
		return FrontMatter{}, err
	}
	if format == FormatNone {
		return FrontMatter{Fields: map[string]any{}, Body: string(raw)}, nil
	}
	fields, err := parseFields(format, block)
	if err != nil {
		return FrontMatter{}, err
	}
	return FrontMatter{Format: format, Fields: fields, Body: string(body)}, nil
}

func splitFrontMatter(content []byte) (block []byte, body []byte, format Format, err error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	nl := detectNewline(content)

	for _, d := range delimiters {
		open := []byte(d.marker + nl)
		if !bytes.HasPrefix(content, open) {
			continue
		}
		rest := content[len(open):]

		closeLine := []byte(d.marker + nl)
		if bytes.HasPrefix(rest, closeLine) {
			return []byte{}, rest[len(closeLine):], d.format, nil
		}
		if bytes.Equal(rest, []byte(d.marker)) {
			return []byte{}, []byte{}, d.format, nil
		}

		closeSeq := []byte(nl + d.marker + nl)
		if idx := bytes.Index(rest, closeSeq); idx >= 0 {
			return rest[:idx+len(nl)], rest[idx+len(closeSeq):], d.format, nil
		}
		// Closing delimiter on the last line without a trailing newline.
		if tail := []byte(nl + d.marker); bytes.HasSuffix(rest, tail) {
			return rest[:len(rest)-len(tail)+len(nl)], []byte{}, d.format, nil
		}
		return nil, nil, FormatNone, fmt.Errorf("%w: %s block has no closing %q", ErrMalformedFrontMatter, d.format, d.marker)
	}
	return nil, content, FormatNone, nil
}

func parseFields(format Format, block []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(block)) == 0 {
		return fields, nil
	}

	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(block, &fields)
	case FormatTOML:
		err = toml.Unmarshal(block, &fields)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedFrontMatter, format, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
