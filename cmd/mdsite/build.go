package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	mdsite "github.com/alnah/go-mdsite"
	"github.com/alnah/go-mdsite/internal/config"
	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/permalink"
)

// Sentinel errors for CLI operations.
var (
	ErrNoSource           = errors.New("source directory not found")
	ErrReadDocument       = errors.New("failed to read document")
	ErrWritePage          = errors.New("failed to write page")
	ErrCopyStatic         = errors.New("failed to copy static file")
	ErrUndatedPost        = errors.New("post file name must carry a YYYY-MM-DD- prefix")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrUnsafeClean        = errors.New("refusing to clean: output directory contains the source")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// FileToBuild represents a single source file to process.
type FileToBuild struct {
	AbsPath string
	RelPath string // forward slashes, relative to the source root
	Static  bool   // copied verbatim instead of rendered
	InPosts bool   // lives under the configured posts directory
}

// BuildResult holds the outcome of processing a single file.
type BuildResult struct {
	SourcePath string
	OutputPath string
	Err        error
	Skipped    bool // unpublished document, not an error
	Duration   time.Duration
}

// buildParams groups parameters shared across the batch.
type buildParams struct {
	outputDir string
	drafts    bool
	now       func() time.Time // injectable clock for per-file timing
}

// runBuild orchestrates the site build.
func runBuild(ctx context.Context, positionalArgs []string, flags *buildFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	// Load configuration
	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, positionalArgs, cfg)

	sourceDir := cfg.Source.Dir
	if info, err := os.Stat(sourceDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNoSource, sourceDir)
	}

	outputDir := resolveUnderSource(sourceDir, cfg.Output.Dir)
	layoutsDir := resolveUnderSource(sourceDir, cfg.Layouts.Dir)

	if flags.clean {
		if err := cleanOutputDir(sourceDir, outputDir); err != nil {
			return err
		}
	}

	// Populate the layout registry once, before any render.
	// A site without a layouts directory uses only the built-in default.
	registry := mdsite.NewLayoutRegistry()
	if info, err := os.Stat(layoutsDir); err == nil && info.IsDir() {
		registry, err = mdsite.LoadLayouts(layoutsDir)
		if err != nil {
			return fmt.Errorf("loading layouts: %w", err)
		}
	}

	// Discover files to build
	files, err := discoverFiles(sourceDir, outputDir, cfg)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files found in %s", sourceDir)
	}

	site := mdsite.Site{
		Title:       cfg.Site.Title,
		BaseURL:     cfg.Site.BaseURL,
		Description: cfg.Site.Description,
	}
	newRenderer := func() *mdsite.Renderer {
		return mdsite.New(registry,
			mdsite.WithSite(site),
			mdsite.WithDefaultLayout(cfg.Layouts.Default),
			mdsite.WithPermalink(cfg.Render.Permalink),
		)
	}

	poolSize := mdsite.ResolvePoolSize(flags.workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := mdsite.NewRendererPool(poolSize, newRenderer)

	params := &buildParams{outputDir: outputDir, drafts: flags.drafts, now: env.Now}
	results := buildBatch(ctx, pool, files, params)

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d document(s) failed", failedCount)
	}

	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
// The first positional argument, if any, is the source directory.
func mergeFlags(flags *buildFlags, positionalArgs []string, cfg *config.Config) {
	if len(positionalArgs) > 0 {
		cfg.Source.Dir = positionalArgs[0]
	}
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.layouts != "" {
		cfg.Layouts.Dir = flags.layouts
	}
	if flags.permalink != "" {
		cfg.Render.Permalink = flags.permalink
	}
	if flags.site.title != "" {
		cfg.Site.Title = flags.site.title
	}
	if flags.site.baseURL != "" {
		cfg.Site.BaseURL = flags.site.baseURL
	}
}

// resolveUnderSource anchors a relative configured path under the source
// directory. Absolute paths pass through unchanged.
func resolveUnderSource(sourceDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(sourceDir, dir)
}

// cleanOutputDir removes the output directory before a build.
// Refuses when the source lives inside the output directory.
func cleanOutputDir(sourceDir, outputDir string) error {
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}
	if absSource == absOutput || strings.HasPrefix(absSource+string(filepath.Separator), absOutput+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrUnsafeClean, outputDir)
	}
	return os.RemoveAll(absOutput)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdsite.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdsite.MaxPoolSize)
	}
	return nil
}

// discoverFiles walks the source tree and classifies every file.
//
// Directories and files whose name starts with "_" or "." are skipped, with
// one exception: the configured posts directory is scanned even though it
// carries an underscore. The output directory is skipped when it is nested
// under the source. Exclude patterns match against the relative path or the
// base name.
func discoverFiles(sourceDir, outputDir string, cfg *config.Config) ([]FileToBuild, error) {
	postsDir := filepath.ToSlash(cfg.Source.PostsDir)
	absOutput, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, err
	}

	var files []FileToBuild
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		inPosts := postsDir != "" && (rel == postsDir || strings.HasPrefix(rel, postsDir+"/"))

		if d.IsDir() {
			if abs, err := filepath.Abs(path); err == nil && abs == absOutput {
				return fs.SkipDir
			}
			if isHiddenName(d.Name()) && !inPosts {
				return fs.SkipDir
			}
			return nil
		}

		if isHiddenName(d.Name()) && !inPosts {
			return nil
		}
		if matchesExclude(rel, cfg.Source.Exclude) {
			return nil
		}

		files = append(files, FileToBuild{
			AbsPath: path,
			RelPath: rel,
			Static:  !fileutil.IsMarkup(path),
			InPosts: inPosts,
		})
		return nil
	})

	return files, err
}

// isHiddenName reports whether a file or directory name is skipped by
// convention.
func isHiddenName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// matchesExclude reports whether rel matches any exclude pattern.
// Patterns were validated at config load, so Match cannot fail here.
func matchesExclude(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// buildBatch processes files concurrently using the renderer pool.
func buildBatch(ctx context.Context, pool *mdsite.RendererPool, files []FileToBuild, params *buildParams) []BuildResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]BuildResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			renderer := pool.Acquire()
			defer pool.Release(renderer)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = BuildResult{
						SourcePath: files[idx].RelPath,
						Err:        ctx.Err(),
					}
					continue
				}
				results[idx] = buildFile(ctx, renderer, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// buildFile processes a single file and returns the result.
// Failures are contained: one bad document never aborts the batch.
func buildFile(ctx context.Context, renderer *mdsite.Renderer, f FileToBuild, params *buildParams) (result BuildResult) {
	start := params.now()
	defer func() { result.Duration = params.now().Sub(start) }()

	result = BuildResult{SourcePath: f.RelPath}

	if f.Static {
		dst := filepath.Join(params.outputDir, filepath.FromSlash(f.RelPath))
		if err := fileutil.CopyFile(f.AbsPath, dst, dirPermissions, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrCopyStatic, err)
		} else {
			result.OutputPath = dst
		}
		return result
	}

	content, err := os.ReadFile(f.AbsPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadDocument, err)
		return result
	}

	doc, err := mdsite.ParseDocument(documentPath(f), string(content))
	if err != nil {
		result.Err = err
		return result
	}

	if !doc.FrontMatter.IsPublished() && !params.drafts {
		result.Skipped = true
		return result
	}

	if err := validatePostName(f, doc); err != nil {
		result.Err = err
		return result
	}

	page, err := renderer.Render(ctx, doc)
	if err != nil {
		result.Err = err
		return result
	}

	outPath := filepath.Join(params.outputDir, filepath.FromSlash(page.OutputPath))
	if err := os.MkdirAll(filepath.Dir(outPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePage, err)
		return result
	}
	// #nosec G306 -- rendered pages are meant to be world-readable
	if err := os.WriteFile(outPath, page.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWritePage, err)
		return result
	}

	result.OutputPath = outPath
	return result
}

// documentPath is the path a document reports in errors and mirrors into its
// output location. Posts drop the posts directory prefix so their permalink
// never contains it.
func documentPath(f FileToBuild) string {
	if !f.InPosts {
		return f.RelPath
	}
	if idx := strings.LastIndex(f.RelPath, "/"); idx >= 0 {
		return f.RelPath[idx+1:]
	}
	return f.RelPath
}

// validatePostName enforces the dated-name convention for posts.
// A post without a date prefix has no position in the site's URL structure
// unless its front matter supplies a date or an explicit permalink.
func validatePostName(f FileToBuild, doc *mdsite.Document) error {
	if !f.InPosts {
		return nil
	}
	if doc.FrontMatter.Date != "" || doc.FrontMatter.Permalink != "" {
		return nil
	}
	name := strings.TrimSuffix(filepath.Base(f.RelPath), filepath.Ext(f.RelPath))
	if _, _, ok := permalink.SplitDatedName(name); !ok {
		return fmt.Errorf("%w: %s", ErrUndatedPost, f.RelPath)
	}
	return nil
}

// printResults outputs build results using the provided writers.
func printResults(results []BuildResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed, skipped int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.SourcePath, r.Err)
			continue
		}
		if r.Skipped {
			skipped++
			if verbose {
				fmt.Fprintf(env.Stdout, "skipped %s (unpublished)\n", r.SourcePath)
			}
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.SourcePath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)
	}

	return failed
}
