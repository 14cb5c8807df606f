// Package mdsite renders Markdown documents with YAML front matter into a
// static HTML site.
//
// # Quick Start
//
// Load layouts, create a renderer, and render documents:
//
//	registry, err := mdsite.LoadLayouts("_layouts")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r := mdsite.New(registry, mdsite.WithSite(mdsite.Site{Title: "My Blog"}))
//
//	doc, err := mdsite.ParseDocument("_posts/2014-01-02-hello.md", source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page, err := r.Render(ctx, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(filepath.Join("_site", page.OutputPath), page.HTML, 0644)
//
// # Rendering Pipeline
//
// Each document moves through these stages:
//
//  1. Front matter split and YAML parsing (layout, title, tags, date, ...)
//  2. Body preprocessing (line normalization)
//  3. Markdown to HTML conversion via Goldmark (GFM, syntax highlighting
//     with chroma CSS classes)
//  4. Layout template execution (html/template)
//  5. Output path derivation from the source path and permalink template
//
// Rendering is a pure function of the document plus the layout registry:
// no shared mutable state, deterministic output, safe to run documents in
// parallel. Use RendererPool for batch builds.
//
// # Documents
//
// A document optionally starts with a front matter block:
//
//	---
//	layout: post
//	title: "Testing Redux"
//	tags: [javascript, redux]
//	---
//	Body text in Markdown.
//
// An opening delimiter without a closing one fails with
// ErrMalformedFrontMatter. A document with no block at all is fine: the whole
// file is the body.
//
// # Layouts
//
// Layouts are html/template files loaded once into a LayoutRegistry. A
// document names its layout in front matter; an unknown name fails that
// document with ErrUnknownLayout and produces no output. Documents that name
// no layout use the configured default; `layout: none` emits the bare
// fragment.
//
// # Output Paths
//
// Date-prefixed sources (2014-01-02-slug.md) map through a permalink
// template, "/:year/:month/:day/:title.html" by default. Other sources
// mirror their relative path with the extension swapped to .html. A front
// matter permalink overrides both.
package mdsite
