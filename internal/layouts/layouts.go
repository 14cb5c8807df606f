// Package layouts loads named HTML layout templates from a directory and
// resolves them for rendering. A registry is populated once at startup and
// never mutated afterwards, so concurrent reads need no locking.
package layouts

import (
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for layout operations.
var (
	ErrUnknownLayout     = errors.New("unknown layout")
	ErrEmptyLayoutName   = errors.New("layout name cannot be empty")
	ErrInvalidLayoutsDir = errors.New("invalid layouts directory")
	ErrLayoutParse       = errors.New("failed to parse layout")
)

// DefaultName is the name of the built-in layout, used when a document
// declares no layout of its own.
const DefaultName = "default"

// partialsDir is the subdirectory whose templates are parsed into every
// layout, so layouts can reference them with {{template "name" .}}.
const partialsDir = "partials"

//go:embed default.html
var embeddedDefault string

// Registry holds parsed layout templates keyed by name.
type Registry struct {
	templates map[string]*template.Template
}

// NewRegistry returns a registry containing only the embedded default layout.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]*template.Template)}
	// The embedded layout is compiled into the binary; a parse failure here
	// is a programmer error.
	r.templates[DefaultName] = template.Must(
		template.New(DefaultName).Parse(embeddedDefault))
	return r
}

// Load builds a registry from every *.html file directly under dir.
// Files under dir/partials/ are parsed into each layout instead of becoming
// layouts themselves. The embedded default layout is kept unless dir provides
// its own default.html.
func Load(dir string) (*Registry, error) {
	absDir, err := validateDir(dir)
	if err != nil {
		return nil, err
	}

	partials, err := loadPartials(absDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayoutsDir, err)
	}

	r := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		tmpl, err := parseLayout(absDir, entry.Name(), name, partials)
		if err != nil {
			return nil, err
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Resolve looks up a layout by name.
func (r *Registry) Resolve(name string) (*template.Template, error) {
	if name == "" {
		return nil, ErrEmptyLayoutName
	}
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return tmpl, nil
}

// Has reports whether a layout with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Names returns the registered layout names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateDir checks that dir is a readable directory and returns its
// absolute path with symlinks resolved.
func validateDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidLayoutsDir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLayoutsDir, err)
	}
	if realDir, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = realDir
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: directory does not exist: %s", ErrInvalidLayoutsDir, absDir)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidLayoutsDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrInvalidLayoutsDir, absDir)
	}

	return absDir, nil
}

// loadPartials reads dir/partials/*.html into a name->content map.
// A missing partials directory is fine.
func loadPartials(absDir string) (map[string]string, error) {
	partials := make(map[string]string)

	entries, err := os.ReadDir(filepath.Join(absDir, partialsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return partials, nil
		}
		return nil, fmt.Errorf("%w: reading partials: %v", ErrInvalidLayoutsDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		path := filepath.Join(absDir, partialsDir, entry.Name())
		content, err := os.ReadFile(path) // #nosec G304 -- path is inside the validated layouts dir
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutParse, path, err)
		}
		partials[strings.TrimSuffix(entry.Name(), ".html")] = string(content)
	}

	return partials, nil
}

// parseLayout parses one layout file together with the shared partials.
func parseLayout(absDir, fileName, name string, partials map[string]string) (*template.Template, error) {
	path := filepath.Join(absDir, fileName)
	content, err := os.ReadFile(path) // #nosec G304 -- path is inside the validated layouts dir
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutParse, path, err)
	}

	tmpl := template.New(name)
	for partialName, partialContent := range partials {
		if _, err := tmpl.New(partialName).Parse(partialContent); err != nil {
			return nil, fmt.Errorf("%w: partial %q: %v", ErrLayoutParse, partialName, err)
		}
	}
	if _, err := tmpl.Parse(string(content)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutParse, path, err)
	}

	return tmpl, nil
}
