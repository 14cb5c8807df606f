package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/config"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

func relPaths(files []FileToBuild) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	sort.Strings(paths)
	return paths
}

func TestDiscoverFiles(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{
		"index.md":                  "# Home",
		"docs/guide.md":             "# Guide",
		"style.css":                 "body {}",
		"_posts/2024-01-01-hi.md":   "# Hi",
		"_layouts/post.html":        "{{.Content}}",
		"_drafts/wip.md":            "# WIP",
		".git/config":               "[core]",
		"_site/stale.html":          "<p>old</p>",
		"node_modules/pkg/index.js": "x",
	})

	cfg := config.DefaultConfig()
	cfg.Source.Dir = dir
	cfg.Source.Exclude = []string{"node_modules/*/*"}

	files, err := discoverFiles(dir, filepath.Join(dir, "_site"), cfg)
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}

	want := []string{
		"_posts/2024-01-01-hi.md",
		"docs/guide.md",
		"index.md",
		"style.css",
	}
	got := relPaths(files)
	if len(got) != len(want) {
		t.Fatalf("discovered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("discovered %v, want %v", got, want)
		}
	}

	for _, f := range files {
		switch f.RelPath {
		case "style.css":
			if !f.Static {
				t.Error("style.css should be static")
			}
		case "_posts/2024-01-01-hi.md":
			if f.Static {
				t.Error("post should not be static")
			}
			if !f.InPosts {
				t.Error("post should be flagged InPosts")
			}
		case "index.md", "docs/guide.md":
			if f.Static || f.InPosts {
				t.Errorf("%s flags = %+v", f.RelPath, f)
			}
		}
	}
}

func TestDiscoverFiles_OutputOutsideSource(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"index.md": "# Home"})
	outside := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Source.Dir = dir

	files, err := discoverFiles(dir, outside, cfg)
	if err != nil {
		t.Fatalf("discoverFiles() error = %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "index.md" {
		t.Errorf("discovered %v, want [index.md]", relPaths(files))
	}
}

func TestMatchesExclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rel      string
		patterns []string
		want     bool
	}{
		{name: "no patterns", rel: "a.md", patterns: nil, want: false},
		{name: "relative path match", rel: "tmp/a.md", patterns: []string{"tmp/*"}, want: true},
		{name: "base name match", rel: "deep/nested/notes.txt", patterns: []string{"*.txt"}, want: true},
		{name: "no match", rel: "docs/a.md", patterns: []string{"tmp/*"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchesExclude(tt.rel, tt.patterns); got != tt.want {
				t.Errorf("matchesExclude(%q, %v) = %v, want %v", tt.rel, tt.patterns, got, tt.want)
			}
		})
	}
}

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	flags := &buildFlags{
		output:    "public",
		layouts:   "templates",
		permalink: "pretty",
		site:      siteFlags{title: "Flag Title", baseURL: "https://flags.example"},
	}

	mergeFlags(flags, []string{"content"}, cfg)

	if cfg.Source.Dir != "content" {
		t.Errorf("Source.Dir = %q", cfg.Source.Dir)
	}
	if cfg.Output.Dir != "public" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
	if cfg.Layouts.Dir != "templates" {
		t.Errorf("Layouts.Dir = %q", cfg.Layouts.Dir)
	}
	if cfg.Render.Permalink != "pretty" {
		t.Errorf("Render.Permalink = %q", cfg.Render.Permalink)
	}
	if cfg.Site.Title != "Flag Title" || cfg.Site.BaseURL != "https://flags.example" {
		t.Errorf("Site = %+v", cfg.Site)
	}
}

func TestMergeFlags_EmptyFlagsKeepConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Site.Title = "From Config"
	cfg.Output.Dir = "public"

	mergeFlags(&buildFlags{}, nil, cfg)

	if cfg.Site.Title != "From Config" {
		t.Errorf("Site.Title = %q, want config value kept", cfg.Site.Title)
	}
	if cfg.Output.Dir != "public" {
		t.Errorf("Output.Dir = %q, want config value kept", cfg.Output.Dir)
	}
	if cfg.Source.Dir != "." {
		t.Errorf("Source.Dir = %q, want default kept", cfg.Source.Dir)
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		wantErr bool
	}{
		{name: "auto", workers: 0},
		{name: "explicit", workers: 4},
		{name: "maximum", workers: 8},
		{name: "negative", workers: -1, wantErr: true},
		{name: "over maximum", workers: 9, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateWorkers(tt.workers)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidWorkerCount) {
					t.Errorf("validateWorkers(%d) error = %v, want ErrInvalidWorkerCount", tt.workers, err)
				}
				return
			}
			if err != nil {
				t.Errorf("validateWorkers(%d) error = %v", tt.workers, err)
			}
		})
	}
}

func TestCleanOutputDir(t *testing.T) {
	t.Parallel()

	t.Run("removes nested output", func(t *testing.T) {
		t.Parallel()

		dir := writeTree(t, map[string]string{"_site/old.html": "<p>stale</p>"})
		output := filepath.Join(dir, "_site")

		if err := cleanOutputDir(dir, output); err != nil {
			t.Fatalf("cleanOutputDir() error = %v", err)
		}
		if _, err := os.Stat(output); !os.IsNotExist(err) {
			t.Error("output directory should be removed")
		}
	})

	t.Run("refuses when output contains source", func(t *testing.T) {
		t.Parallel()

		parent := t.TempDir()
		source := filepath.Join(parent, "src")
		if err := os.MkdirAll(source, 0o750); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}

		err := cleanOutputDir(source, parent)
		if !errors.Is(err, ErrUnsafeClean) {
			t.Errorf("cleanOutputDir() error = %v, want ErrUnsafeClean", err)
		}
		if _, statErr := os.Stat(source); statErr != nil {
			t.Error("source must survive a refused clean")
		}
	})

	t.Run("refuses when output equals source", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := cleanOutputDir(dir, dir); !errors.Is(err, ErrUnsafeClean) {
			t.Errorf("cleanOutputDir() error = %v, want ErrUnsafeClean", err)
		}
	})
}

func TestBuildFile_DurationFromInjectedClock(t *testing.T) {
	t.Parallel()

	src := writeTree(t, map[string]string{"style.css": "body {}"})
	out := t.TempDir()

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var calls int
	params := &buildParams{
		outputDir: out,
		now: func() time.Time {
			calls++
			return base.Add(time.Duration(calls-1) * 50 * time.Millisecond)
		},
	}

	f := FileToBuild{
		AbsPath: filepath.Join(src, "style.css"),
		RelPath: "style.css",
		Static:  true,
	}
	result := buildFile(context.Background(), nil, f, params)
	if result.Err != nil {
		t.Fatalf("buildFile() error = %v", result.Err)
	}
	if result.Duration != 50*time.Millisecond {
		t.Errorf("Duration = %v, want 50ms from the injected clock", result.Duration)
	}
}

func TestDocumentPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file FileToBuild
		want string
	}{
		{
			name: "regular page keeps its path",
			file: FileToBuild{RelPath: "docs/guide.md"},
			want: "docs/guide.md",
		},
		{
			name: "post drops the posts prefix",
			file: FileToBuild{RelPath: "_posts/2024-01-01-hi.md", InPosts: true},
			want: "2024-01-01-hi.md",
		},
		{
			name: "nested post keeps only the file name",
			file: FileToBuild{RelPath: "_posts/2024/2024-01-01-hi.md", InPosts: true},
			want: "2024-01-01-hi.md",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := documentPath(tt.file); got != tt.want {
				t.Errorf("documentPath(%+v) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestValidatePostName(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, source string) *mdsite.Document {
		t.Helper()
		doc, err := mdsite.ParseDocument("x.md", source)
		if err != nil {
			t.Fatalf("ParseDocument: %v", err)
		}
		return doc
	}

	tests := []struct {
		name    string
		file    FileToBuild
		source  string
		wantErr error
	}{
		{
			name:   "dated post passes",
			file:   FileToBuild{RelPath: "_posts/2024-01-01-hi.md", InPosts: true},
			source: "Hi.\n",
		},
		{
			name:    "undated post fails",
			file:    FileToBuild{RelPath: "_posts/hi.md", InPosts: true},
			source:  "Hi.\n",
			wantErr: ErrUndatedPost,
		},
		{
			name:   "undated post with front matter date passes",
			file:   FileToBuild{RelPath: "_posts/hi.md", InPosts: true},
			source: "---\ndate: 2024-01-01\n---\nHi.\n",
		},
		{
			name:   "undated post with permalink passes",
			file:   FileToBuild{RelPath: "_posts/hi.md", InPosts: true},
			source: "---\npermalink: /hi/\n---\nHi.\n",
		},
		{
			name:   "undated page outside posts passes",
			file:   FileToBuild{RelPath: "about.md"},
			source: "Hi.\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parse(t, tt.source)
			err := validatePostName(tt.file, doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validatePostName() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePostName() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
