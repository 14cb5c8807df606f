package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdsite/internal/config"
)

func TestRunCheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy site", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{
			"index.md":                   "# Home\n",
			"_posts/2024-01-15-first.md": "First.\n",
			"style.css":                  "body {}",
			"_layouts/post.html":         "{{.Content}}",
		})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "ready" {
			t.Errorf("Status = %q, want ready (errors: %v, warnings: %v)",
				result.Status, result.Errors, result.Warnings)
		}
		if result.Source.Documents != 2 {
			t.Errorf("Documents = %d, want 2", result.Source.Documents)
		}
		if result.Source.Posts != 1 {
			t.Errorf("Posts = %d, want 1", result.Source.Posts)
		}
		if result.Source.Static != 1 {
			t.Errorf("Static = %d, want 1", result.Source.Static)
		}
	})

	t.Run("missing layouts directory is a warning", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{"index.md": "# Home\n"})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "warnings" {
			t.Errorf("Status = %q, want warnings", result.Status)
		}
	})

	t.Run("unknown layout reference is an error", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{
			"page.md":               "---\nlayout: missing\n---\nText.\n",
			"_layouts/default.html": "{{.Content}}",
		})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "errors" {
			t.Fatalf("Status = %q, want errors", result.Status)
		}
		found := false
		for _, msg := range result.Errors {
			if strings.Contains(msg, "missing") {
				found = true
			}
		}
		if !found {
			t.Errorf("errors should name the missing layout: %v", result.Errors)
		}
	})

	t.Run("missing default layout is an error", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{
			"index.md":           "# Home\n",
			"_layouts/post.html": "{{.Content}}",
		})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src
		cfg.Layouts.Default = "article"

		result := runCheck(cfg)

		if result.Status != "errors" {
			t.Errorf("Status = %q, want errors (%v)", result.Status, result.Errors)
		}
	})

	t.Run("unterminated front matter is an error", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{"broken.md": "---\nnever closed\n"})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "errors" {
			t.Errorf("Status = %q, want errors", result.Status)
		}
	})

	t.Run("undated post is an error", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{"_posts/undated.md": "Hi.\n"})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "errors" {
			t.Errorf("Status = %q, want errors (%v)", result.Status, result.Errors)
		}
	})

	t.Run("unpublished document is a warning", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{
			"draft.md":              "---\npublished: false\n---\nDraft.\n",
			"_layouts/default.html": "{{.Content}}",
		})
		cfg := config.DefaultConfig()
		cfg.Source.Dir = src

		result := runCheck(cfg)

		if result.Status != "warnings" {
			t.Errorf("Status = %q, want warnings (%v)", result.Status, result.Errors)
		}
	})

	t.Run("missing source directory", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Source.Dir = filepath.Join(t.TempDir(), "nope")

		result := runCheck(cfg)

		if result.Status != "errors" {
			t.Errorf("Status = %q, want errors", result.Status)
		}
	})
}

func TestRunCheckCmd(t *testing.T) {
	t.Parallel()

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{
			"index.md":              "# Home\n",
			"_layouts/default.html": "{{.Content}}",
		})

		env, stdout, _ := testEnv()
		code := runCheckCmd([]string{src, "--json"}, env)
		if code != ExitSuccess {
			t.Fatalf("runCheckCmd() = %d, stdout:\n%s", code, stdout.String())
		}

		var result checkResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			t.Fatalf("output is not valid JSON: %v\n%s", err, stdout.String())
		}
		if result.Status != "ready" {
			t.Errorf("Status = %q, want ready", result.Status)
		}
	})

	t.Run("errors exit nonzero", func(t *testing.T) {
		t.Parallel()

		src := writeTree(t, map[string]string{"broken.md": "---\nnever closed\n"})

		env, _, _ := testEnv()
		if code := runCheckCmd([]string{src}, env); code != ExitGeneral {
			t.Errorf("runCheckCmd() = %d, want %d", code, ExitGeneral)
		}
	})

	t.Run("bad config name", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()
		if code := runCheckCmd([]string{"-c", filepath.Join(t.TempDir(), "nope.yaml")}, env); code != ExitUsage {
			t.Errorf("runCheckCmd() = %d, want %d", code, ExitUsage)
		}
	})
}
