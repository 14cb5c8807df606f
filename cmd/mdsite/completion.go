package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell")

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
}

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long  string // --output
	Short string // -o (empty if none)
	Desc  string // help text
	IsDir bool   // directory completion
}

// dirFlags names the flags that complete to directories.
// Flag names and descriptions come from the FlagSet itself.
var dirFlags = map[string]bool{
	"output":  true,
	"layouts": true,
}

// extractFlags pulls flag definitions out of a pflag.FlagSet so the
// completion script stays in sync with the real flags.
func extractFlags(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		flags = append(flags, flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
			IsDir: dirFlags[f.Name],
		})
	})
	return flags
}

// getCommands returns the command registry for completion.
func getCommands() []commandDef {
	buildFS, _ := newBuildFlagSet()
	checkFS, _ := newCheckFlagSet()
	return []commandDef{
		{Name: "build", Desc: "Render the site", Flags: extractFlags(buildFS)},
		{Name: "check", Desc: "Validate the site", Flags: extractFlags(checkFS)},
		{Name: "completion", Desc: "Generate shell completion script"},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}
}

// GenerateCompletion writes a shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh)", ErrUnsupportedShell, shell)
	}
}

// generateBash writes a bash completion script.
func generateBash(w io.Writer) error {
	commands := getCommands()

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}

	fmt.Fprintln(w, "# bash completion for mdsite")
	fmt.Fprintln(w, "_mdsite() {")
	fmt.Fprintln(w, "    local cur prev words cword")
	fmt.Fprintln(w, "    _init_completion || return")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if [[ $cword -eq 1 ]]; then")
	fmt.Fprintf(w, "        COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(names, " "))
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    case ${words[1]} in")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		var opts []string
		for _, f := range c.Flags {
			opts = append(opts, "--"+f.Long)
			if f.Short != "" {
				opts = append(opts, "-"+f.Short)
			}
		}
		fmt.Fprintf(w, "    %s)\n", c.Name)
		fmt.Fprintln(w, "        if [[ $cur == -* ]]; then")
		fmt.Fprintf(w, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(opts, " "))
		fmt.Fprintln(w, "        else")
		fmt.Fprintln(w, "            _filedir -d")
		fmt.Fprintln(w, "        fi")
		fmt.Fprintln(w, "        ;;")
	}
	fmt.Fprintln(w, "    completion)")
	fmt.Fprintln(w, "        COMPREPLY=($(compgen -W \"bash zsh\" -- \"$cur\"))")
	fmt.Fprintln(w, "        ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "complete -F _mdsite mdsite")
	return nil
}

// generateZsh writes a zsh completion script.
func generateZsh(w io.Writer) error {
	commands := getCommands()

	fmt.Fprintln(w, "#compdef mdsite")
	fmt.Fprintln(w, "_mdsite() {")
	fmt.Fprintln(w, "    local -a commands")
	fmt.Fprintln(w, "    commands=(")
	for _, c := range commands {
		fmt.Fprintf(w, "        '%s:%s'\n", c.Name, c.Desc)
	}
	fmt.Fprintln(w, "    )")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    if (( CURRENT == 2 )); then")
	fmt.Fprintln(w, "        _describe 'command' commands")
	fmt.Fprintln(w, "        return")
	fmt.Fprintln(w, "    fi")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "    case $words[2] in")
	for _, c := range commands {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(w, "    %s)\n", c.Name)
		fmt.Fprintln(w, "        _arguments \\")
		for _, f := range c.Flags {
			action := ""
			if f.IsDir {
				action = ":directory:_files -/"
			}
			fmt.Fprintf(w, "            '--%s[%s]%s' \\\n", f.Long, zshEscape(f.Desc), action)
		}
		fmt.Fprintln(w, "            '*:directory:_files -/'")
		fmt.Fprintln(w, "        ;;")
	}
	fmt.Fprintln(w, "    completion)")
	fmt.Fprintln(w, "        _values 'shell' bash zsh")
	fmt.Fprintln(w, "        ;;")
	fmt.Fprintln(w, "    esac")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "_mdsite \"$@\"")
	return nil
}

// zshEscape escapes characters that break zsh _arguments specs.
func zshEscape(s string) string {
	s = strings.ReplaceAll(s, "[", `\[`)
	s = strings.ReplaceAll(s, "]", `\]`)
	return strings.ReplaceAll(s, "'", "'\\''")
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdsite completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash    Bash completion script")
	fmt.Fprintln(w, "  zsh     Zsh completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdsite completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (before compinit):")
	fmt.Fprintln(w, "    eval \"$(mdsite completion zsh)\"")
}
