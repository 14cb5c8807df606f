package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags holds site metadata overrides.
type siteFlags struct {
	title   string
	baseURL string
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common    commonFlags
	site      siteFlags
	output    string
	layouts   string
	permalink string
	workers   int
	drafts    bool
	clean     bool
}

// checkFlags holds all flags for the check command.
type checkFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addSiteFlags adds site metadata flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.title, "site-title", "", "site title shown by layouts")
	fs.StringVar(&f.baseURL, "base-url", "", "site base URL (no trailing slash)")
}

// newBuildFlagSet creates the build command FlagSet. The same set backs
// flag parsing and completion generation so the two cannot drift.
func newBuildFlagSet() (*flag.FlagSet, *buildFlags) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	f := &buildFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVarP(&f.layouts, "layouts", "l", "", "layouts directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.permalink, "permalink", "", "permalink template or preset for dated posts")
	fs.BoolVar(&f.drafts, "drafts", false, "also render documents marked published: false")
	fs.BoolVar(&f.clean, "clean", false, "remove the output directory before building")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)

	return fs, f
}

// newCheckFlagSet creates the check command FlagSet.
func newCheckFlagSet() (*flag.FlagSet, *checkFlags) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	f := &checkFlags{}

	fs.BoolVar(&f.json, "json", false, "machine-readable output")
	addCommonFlags(fs, &f.common)

	return fs, f
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string) (*buildFlags, []string, error) {
	fs, f := newBuildFlagSet()
	fs.Usage = func() { printBuildUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseCheckFlags parses check command flags and returns positional args.
func parseCheckFlags(args []string) (*checkFlags, []string, error) {
	fs, f := newCheckFlagSet()
	fs.Usage = func() { printCheckUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
