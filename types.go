package mdsite

import (
	"html/template"

	"github.com/alnah/go-mdsite/internal/permalink"
)

// LayoutNone is the front matter layout value that renders the bare HTML
// fragment without wrapping it in any template.
const LayoutNone = "none"

// DefaultLayoutName is the built-in layout used for documents that declare
// no layout of their own.
const DefaultLayoutName = "default"

// DefaultPermalink is the permalink template applied to date-prefixed
// documents when no other template is configured.
const DefaultPermalink = permalink.DefaultTemplate

// Site holds site-wide metadata exposed to layout templates.
type Site struct {
	Title       string
	BaseURL     string // No trailing slash
	Description string
}

// Page is the final HTML for one document plus its output path.
// Written once; not mutated after being persisted.
type Page struct {
	// OutputPath is relative to the output root, using forward slashes.
	OutputPath string
	HTML       []byte
}

// PageData is the value a layout template executes against.
type PageData struct {
	Site    Site
	Title   string
	Date    string // YYYY-MM-DD, empty when the document carries no date
	Tags    []string
	URL     string // Site-absolute URL of the page
	Content template.HTML
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	site          Site
	defaultLayout string
	permalinkTpl  string
}

// WithSite sets the site metadata passed to layout templates.
func WithSite(site Site) Option {
	return func(r *Renderer) {
		r.cfg.site = site
	}
}

// WithDefaultLayout sets the layout used by documents that declare none.
// Panics if name is empty (programmer error); use LayoutNone to disable
// wrapping entirely.
func WithDefaultLayout(name string) Option {
	if name == "" {
		panic("mdsite: WithDefaultLayout name must not be empty")
	}
	return func(r *Renderer) {
		r.cfg.defaultLayout = name
	}
}

// WithPermalink sets the permalink template or preset applied to
// date-prefixed documents. Validated on first use during Render.
func WithPermalink(tpl string) Option {
	return func(r *Renderer) {
		r.cfg.permalinkTpl = tpl
	}
}
