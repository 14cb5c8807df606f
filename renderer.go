package mdsite

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path"
	"strings"
	"time"

	"github.com/alnah/go-mdsite/internal/permalink"
)

// Renderer orchestrates the document-to-page pipeline.
// A Renderer is a pure function of its inputs plus the layout registry:
// rendering the same document twice yields byte-identical output.
type Renderer struct {
	cfg          rendererConfig
	preprocessor bodyPreprocessor
	converter    htmlConverter
	layouts      *LayoutRegistry
}

// New creates a Renderer drawing layouts from registry.
// A nil registry means only the built-in default layout is available.
// Use options to customize behavior (e.g., WithSite, WithPermalink).
func New(registry *LayoutRegistry, opts ...Option) *Renderer {
	if registry == nil {
		registry = NewLayoutRegistry()
	}

	r := &Renderer{
		cfg: rendererConfig{
			defaultLayout: DefaultLayoutName,
			permalinkTpl:  DefaultPermalink,
		},
		preprocessor: markupPreprocessor{},
		converter:    newGoldmarkConverter(),
		layouts:      registry,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Render runs the full pipeline for one document.
// The context is used for cancellation. Render has no side effects; writing
// the page to storage is the caller's concern.
func (r *Renderer) Render(ctx context.Context, doc *Document) (*Page, error) {
	// Resolve the layout before converting: an unknown layout must fail
	// without producing output.
	tmpl, err := r.resolveLayout(doc)
	if err != nil {
		return nil, err
	}

	outPath, meta, err := r.pageMeta(doc)
	if err != nil {
		return nil, err
	}

	body := r.preprocessor.Preprocess(doc.Body)

	fragment, err := r.converter.ToHTML(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", doc.SourcePath, err)
	}

	html := fragment
	if tmpl != nil {
		meta.Content = template.HTML(fragment) // #nosec G203 -- converter output, escaped by goldmark
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, meta); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLayoutExecute, doc.SourcePath, err)
		}
		html = buf.String()
	}

	return &Page{OutputPath: outPath, HTML: []byte(html)}, nil
}

// resolveLayout picks the document's layout, falling back to the configured
// default. Returns a nil template when wrapping is disabled.
func (r *Renderer) resolveLayout(doc *Document) (*template.Template, error) {
	name := doc.FrontMatter.Layout
	if name == "" {
		name = r.cfg.defaultLayout
	}
	if name == LayoutNone {
		return nil, nil
	}
	tmpl, err := r.layouts.resolve(name)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, doc.SourcePath)
	}
	return tmpl, nil
}

// pageMeta derives the output path and template data for a document.
func (r *Renderer) pageMeta(doc *Document) (string, *PageData, error) {
	date, slug, dated := documentDate(doc)

	outPath, err := r.outputPath(doc, date, slug, dated)
	if err != nil {
		return "", nil, err
	}

	meta := &PageData{
		Site:  r.cfg.site,
		Title: doc.FrontMatter.Title,
		Tags:  doc.FrontMatter.Tags,
		URL:   pageURL(r.cfg.site.BaseURL, outPath),
	}
	if dated {
		meta.Date = date.Format("2006-01-02")
	}

	return outPath, meta, nil
}

// documentDate determines the document's date and slug.
// A front matter date overrides the filename prefix; the slug always comes
// from the filename.
func documentDate(doc *Document) (date time.Time, slug string, dated bool) {
	name := strings.TrimSuffix(path.Base(doc.SourcePath), path.Ext(doc.SourcePath))

	date, slug, dated = permalink.SplitDatedName(name)
	if !dated {
		slug = name
	}

	if fmDate := doc.FrontMatter.Date; fmDate != "" {
		if parsed, err := time.Parse("2006-01-02", fmDate); err == nil {
			date = parsed
			dated = true
		}
	}

	return date, slug, dated
}

// outputPath maps a document to its destination, relative to the output root.
//
// Priority: an explicit front matter permalink, then the permalink template
// for dated documents, then the source path mirrored with the extension
// swapped to .html. A path ending in "/" gets index.html appended.
func (r *Renderer) outputPath(doc *Document, date time.Time, slug string, dated bool) (string, error) {
	var out string

	switch {
	case doc.FrontMatter.Permalink != "":
		expanded, err := permalink.Expand(doc.FrontMatter.Permalink, date, slug)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidPermalink, doc.SourcePath, err)
		}
		out = expanded
	case dated:
		expanded, err := permalink.Expand(r.cfg.permalinkTpl, date, slug)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrInvalidPermalink, doc.SourcePath, err)
		}
		out = expanded
	default:
		ext := path.Ext(doc.SourcePath)
		out = strings.TrimSuffix(doc.SourcePath, ext) + ".html"
	}

	if strings.HasSuffix(out, "/") {
		out += "index.html"
	}

	return strings.TrimPrefix(path.Clean("/"+out), "/"), nil
}

// pageURL builds the site-absolute URL for an output path.
// Trailing index.html is dropped so pretty permalinks link cleanly.
func pageURL(baseURL, outPath string) string {
	url := "/" + outPath
	url = strings.TrimSuffix(url, "index.html")
	return baseURL + url
}
