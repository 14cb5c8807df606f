package mdsite

import "regexp"

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// bodyPreprocessor defines the contract for markup preprocessing.
type bodyPreprocessor interface {
	Preprocess(content string) string
}

// markupPreprocessor normalizes a document body before conversion.
// Order matters: normalize line endings first, then spacing fixes.
type markupPreprocessor struct{}

func (markupPreprocessor) Preprocess(content string) string {
	content = NormalizeLineEndings(content)
	content = CompressBlankLines(content)
	return content
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// CompressBlankLines limits consecutive blank lines to 2 maximum.
func CompressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}
