package mdsite

import (
	"errors"
	"html/template"

	"github.com/alnah/go-mdsite/internal/layouts"
)

// LayoutRegistry is the fixed set of named layout templates a Renderer draws
// from. Populated once before any render call and never mutated afterwards,
// so it is safe for concurrent use by parallel renders.
type LayoutRegistry struct {
	reg *layouts.Registry
}

// NewLayoutRegistry returns a registry containing only the built-in
// default layout.
func NewLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{reg: layouts.NewRegistry()}
}

// LoadLayouts builds a registry from every *.html file directly under dir.
// Files under dir/partials/ become shared partials referenced from layouts
// with {{template "name" .}}. The built-in default layout remains available
// unless dir overrides it with its own default.html.
func LoadLayouts(dir string) (*LayoutRegistry, error) {
	reg, err := layouts.Load(dir)
	if err != nil {
		return nil, convertLayoutError(err)
	}
	return &LayoutRegistry{reg: reg}, nil
}

// Has reports whether a layout with the given name exists.
func (l *LayoutRegistry) Has(name string) bool {
	return l.reg.Has(name)
}

// Names returns the registered layout names, sorted.
func (l *LayoutRegistry) Names() []string {
	return l.reg.Names()
}

// resolve looks up a layout, mapping internal errors to public sentinels.
func (l *LayoutRegistry) resolve(name string) (*template.Template, error) {
	tmpl, err := l.reg.Resolve(name)
	if err != nil {
		return nil, convertLayoutError(err)
	}
	return tmpl, nil
}

// convertLayoutError maps internal layout errors to public errors.
// Internal sentinels live in an internal package, so callers can only match
// the public ones.
func convertLayoutError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, layouts.ErrUnknownLayout) || errors.Is(err, layouts.ErrEmptyLayoutName) {
		return wrapError(ErrUnknownLayout, err)
	}
	return err
}

// wrapError creates a new error that wraps the original with a public
// sentinel. The result preserves the original message via Error() and
// supports errors.Is() matching against the sentinel via Unwrap().
func wrapError(sentinel, original error) error {
	return &wrappedLayoutError{sentinel: sentinel, original: original}
}

type wrappedLayoutError struct {
	sentinel error
	original error
}

func (e *wrappedLayoutError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
func (e *wrappedLayoutError) Unwrap() error {
	return e.sentinel
}
