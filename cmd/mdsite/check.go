package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/config"
	flag "github.com/spf13/pflag"
)

// checkResult holds all site diagnostic information.
type checkResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Source   sourceInfo  `json:"source"`
	Layouts  layoutsInfo `json:"layouts"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// sourceInfo holds source tree inspection results.
type sourceInfo struct {
	Dir       string `json:"dir"`
	Documents int    `json:"documents"`
	Posts     int    `json:"posts"`
	Static    int    `json:"static"`
}

// layoutsInfo holds layout registry inspection results.
type layoutsInfo struct {
	Dir     string   `json:"dir"`
	Names   []string `json:"names"`
	Default string   `json:"default"`
}

// runCheckCmd validates the site without writing output.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad config.
func runCheckCmd(args []string, env *Environment) int {
	flags, positional, err := parseCheckFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	cfg := config.DefaultConfig()
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			fmt.Fprintf(env.Stderr, "loading config: %v\n", err)
			return ExitUsage
		}
	}
	if len(positional) > 0 {
		cfg.Source.Dir = positional[0]
	}

	result := runCheck(cfg)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printCheckResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runCheck performs all diagnostic checks: the source tree exists, layouts
// parse, the default layout resolves, and every document parses with a
// resolvable layout.
func runCheck(cfg *config.Config) *checkResult {
	result := &checkResult{
		Status: "ready",
		Source: sourceInfo{Dir: cfg.Source.Dir},
	}

	registry := checkLayouts(cfg, result)
	checkSource(cfg, registry, result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkLayouts loads the layout registry and verifies the default layout.
func checkLayouts(cfg *config.Config, result *checkResult) *mdsite.LayoutRegistry {
	layoutsDir := resolveUnderSource(cfg.Source.Dir, cfg.Layouts.Dir)
	result.Layouts.Dir = layoutsDir
	result.Layouts.Default = cfg.Layouts.Default

	registry := mdsite.NewLayoutRegistry()
	if info, err := os.Stat(layoutsDir); err != nil || !info.IsDir() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("layouts directory %s not found, only the built-in default layout is available", layoutsDir))
	} else {
		registry, err = mdsite.LoadLayouts(layoutsDir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("loading layouts: %v", err))
			return mdsite.NewLayoutRegistry()
		}
	}
	result.Layouts.Names = registry.Names()

	if cfg.Layouts.Default != mdsite.LayoutNone && !registry.Has(cfg.Layouts.Default) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("default layout %q not found (have: %s)", cfg.Layouts.Default, strings.Join(registry.Names(), ", ")))
	}

	return registry
}

// checkSource parses every document and verifies its layout resolves.
func checkSource(cfg *config.Config, registry *mdsite.LayoutRegistry, result *checkResult) {
	if info, err := os.Stat(cfg.Source.Dir); err != nil || !info.IsDir() {
		result.Errors = append(result.Errors,
			fmt.Sprintf("source directory %s not found", cfg.Source.Dir))
		return
	}

	outputDir := resolveUnderSource(cfg.Source.Dir, cfg.Output.Dir)
	files, err := discoverFiles(cfg.Source.Dir, outputDir, cfg)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("walking source tree: %v", err))
		return
	}

	for _, f := range files {
		if f.Static {
			result.Source.Static++
			continue
		}
		result.Source.Documents++
		if f.InPosts {
			result.Source.Posts++
		}
		checkDocument(f, registry, cfg, result)
	}
}

// checkDocument validates a single document without rendering it.
func checkDocument(f FileToBuild, registry *mdsite.LayoutRegistry, cfg *config.Config, result *checkResult) {
	content, err := os.ReadFile(f.AbsPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.RelPath, err))
		return
	}

	doc, err := mdsite.ParseDocument(documentPath(f), string(content))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	layoutName := doc.FrontMatter.Layout
	if layoutName == "" {
		layoutName = cfg.Layouts.Default
	}
	if layoutName != mdsite.LayoutNone && !registry.Has(layoutName) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: unknown layout %q", f.RelPath, layoutName))
	}

	if err := validatePostName(f, doc); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if !doc.FrontMatter.IsPublished() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s is unpublished and will be skipped", f.RelPath))
	}
}

// printCheckResult writes a human-readable diagnostic report.
func printCheckResult(w io.Writer, result *checkResult) {
	fmt.Fprintf(w, "Source:  %s (%d documents, %d posts, %d static files)\n",
		result.Source.Dir, result.Source.Documents, result.Source.Posts, result.Source.Static)
	fmt.Fprintf(w, "Layouts: %s (default: %s)\n",
		strings.Join(result.Layouts.Names, ", "), result.Layouts.Default)

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, errMsg := range result.Errors {
		fmt.Fprintf(w, "error: %s\n", errMsg)
	}

	fmt.Fprintf(w, "Status: %s\n", result.Status)
}
