package mdsite

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// frontMatterDelimiter marks the start and end of a front matter block.
const frontMatterDelimiter = "---"

// FrontMatter holds the metadata a document declares about itself.
type FrontMatter struct {
	Layout    string     `yaml:"layout"`
	Title     string     `yaml:"title"`
	Tags      StringList `yaml:"tags"`
	Date      string     `yaml:"date"`
	Permalink string     `yaml:"permalink"`
	Published *bool      `yaml:"published"`
}

// IsPublished reports whether the document should be rendered.
// Absence of the published key means published.
func (fm FrontMatter) IsPublished() bool {
	return fm.Published == nil || *fm.Published
}

// StringList accepts either a single YAML scalar or a sequence of scalars.
// "tags: go" and "tags: [go, web]" both parse.
type StringList []string

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (l *StringList) UnmarshalYAML(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "", "null", "~":
		*l = nil
		return nil
	}
	var many []string
	if err := yamlutil.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := yamlutil.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = StringList{one}
	return nil
}

// Document is a parsed source content unit. Immutable after parsing.
type Document struct {
	// SourcePath is the path relative to the site source root,
	// using forward slashes.
	SourcePath string

	FrontMatter FrontMatter

	// Body is the raw markup text with any front matter block removed.
	Body string
}

// ParseDocument splits an optional leading front matter block from the body.
//
// A block is a "---" line at the very start of the source, closed by a second
// "---" line. An opening delimiter without a closing one fails with
// ErrMalformedFrontMatter. If the source does not start with a delimiter, the
// whole text is the body and front matter is empty; that is not an error, and
// an empty source is simply an empty body.
func ParseDocument(sourcePath, source string) (*Document, error) {
	doc := &Document{SourcePath: sourcePath}

	block, body, err := splitFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, sourcePath)
	}
	doc.Body = body

	if strings.TrimSpace(block) == "" {
		return doc, nil
	}

	if err := yamlutil.Unmarshal([]byte(block), &doc.FrontMatter); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontMatterParse, sourcePath, err)
	}

	return doc, nil
}

// splitFrontMatter returns the raw front matter block (without delimiters)
// and the body. Inside a block, line endings are normalized so CRLF sources
// parse the same as LF sources. A source with no block keeps its body
// verbatim, whatever its line endings.
func splitFrontMatter(source string) (block, body string, err error) {
	if !hasLeadingDelimiter(source) {
		return "", source, nil
	}

	// Skip the opening delimiter line.
	rest := NormalizeLineEndings(source)[len(frontMatterDelimiter):]
	rest = strings.TrimPrefix(rest, "\n")

	end := closingDelimiterIndex(rest)
	if end < 0 {
		return "", "", ErrMalformedFrontMatter
	}

	block = rest[:end]
	body = rest[end+len(frontMatterDelimiter):]
	body = strings.TrimPrefix(body, "\n")
	return block, body, nil
}

// hasLeadingDelimiter reports whether the source starts with a delimiter line,
// tolerating CRLF and CR endings. "---" followed by end-of-input also counts;
// that case is malformed since no closing delimiter can follow.
func hasLeadingDelimiter(source string) bool {
	if !strings.HasPrefix(source, frontMatterDelimiter) {
		return false
	}
	rest := source[len(frontMatterDelimiter):]
	return rest == "" || rest[0] == '\n' || rest[0] == '\r'
}

// closingDelimiterIndex finds the offset of the closing "---" line in rest,
// or -1 if the block is unterminated.
func closingDelimiterIndex(rest string) int {
	offset := 0
	for {
		line := rest[offset:]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if line == frontMatterDelimiter {
			return offset
		}
		nl := strings.IndexByte(rest[offset:], '\n')
		if nl < 0 {
			return -1
		}
		offset += nl + 1
	}
}
