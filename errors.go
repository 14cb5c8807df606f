package mdsite

import "errors"

// Sentinel errors for library operations.
var (
	ErrMalformedFrontMatter = errors.New("front matter block is not terminated")
	ErrFrontMatterParse     = errors.New("front matter is not valid YAML")
	ErrHTMLConversion       = errors.New("HTML conversion failed")
	ErrUnknownLayout        = errors.New("unknown layout")
	ErrLayoutExecute        = errors.New("layout execution failed")

	// Permalink validation errors.
	ErrInvalidPermalink = errors.New("invalid permalink template")
)
