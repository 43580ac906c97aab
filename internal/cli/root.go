// Package cli implements the git-force-prefix command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kilupskalvis/git-force-prefix/internal/config"
	"github.com/kilupskalvis/git-force-prefix/internal/core"
	"github.com/kilupskalvis/git-force-prefix/internal/gitrepo"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1 // search exhausted, cancelled, or repository errors
	ExitUsage    = 2 // bad arguments, an invalid prefix or invalid settings
	ExitInternal = 3 // serialization inconsistency
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// ExitCode maps an error returned by the command to a process exit code.
func ExitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, core.ErrInvalidPrefix), errors.Is(err, config.ErrInvalidConfig), errors.As(err, &ue):
		return ExitUsage
	case errors.Is(err, core.ErrSerializationInconsistency):
		return ExitInternal
	default:
		return ExitFailure
	}
}

// options holds flag values for one invocation.
type options struct {
	radius        uint64
	workers       int
	offsetSteps   int
	forwardOnly   bool
	preserveOrder bool
	format        string
	logLevel      string
	apply         bool
	repoPath      string
	configPath    string
	noColor       bool
}

// cmdContext holds common resources for a command
type cmdContext struct {
	Config *config.Config
	Repo   *gitrepo.Repo
}

// initContext opens the repository and loads config, then applies any
// flags the user set explicitly and validates the result.
func initContext(cmd *cobra.Command, opts *options) (*cmdContext, error) {
	repo, err := gitrepo.Open(opts.repoPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath, repo.GitDir())
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, opts, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, usageError{err}
	}
	return &cmdContext{Config: cfg, Repo: repo}, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("radius") {
		cfg.Radius = opts.radius
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("offset-steps") {
		cfg.OffsetSteps = opts.offsetSteps
	}
	if flags.Changed("forward-only") {
		cfg.ForwardOnly = opts.forwardOnly
	}
	if flags.Changed("preserve-order") {
		cfg.PreserveOrder = opts.preserveOrder
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
}

// newRootCmd builds the command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "git-force-prefix <prefix>",
		Short: "Force HEAD's commit hash to start with a given prefix",
		Long: `Search for author and committer timestamps close to HEAD's own that make
HEAD's commit hash start with <prefix>. Only the two timestamps (and, with
--offset-steps, their UTC offsets) change; tree, parents, identities and
message stay the same.

By default the amend command is printed. Use --apply to write the new commit
and move the current branch to it.

Each extra hex digit makes the search 16 times longer.`,
		Example: `  git force-prefix c0ffee
  git force-prefix --radius 600 --workers 4 dead
  git force-prefix --apply --format json 00`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, args[0])
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	f := cmd.Flags()
	f.Uint64VarP(&opts.radius, "radius", "r", config.DefaultRadius, "Maximum seconds each timestamp may move")
	f.IntVarP(&opts.workers, "workers", "j", 0, "Number of concurrent workers (0 = one per CPU)")
	f.IntVar(&opts.offsetSteps, "offset-steps", 0, "Also vary UTC offsets by up to N×15 minutes")
	f.BoolVar(&opts.forwardOnly, "forward-only", false, "Only move timestamps later")
	f.BoolVar(&opts.preserveOrder, "preserve-order", true, "Never make the committer date earlier than the author date")
	f.StringVar(&opts.format, "format", config.FormatCommand, "Output format: command, env or json")
	f.BoolVar(&opts.apply, "apply", false, "Write the amended commit and move HEAD's branch to it")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.repoPath, "repo", "C", ".", "Path inside the repository")
	pf.StringVar(&opts.configPath, "config", "", "Config file (default: .git/force-prefix.toml, then user config)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newCompletionCmd(cmd))
	return cmd
}

// Execute runs the command and returns the process exit code.
func Execute() int {
	return execute(newRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	setupLogging(stderr, "warn")

	err := cmd.Execute()
	if err != nil {
		printError(stderr, err)
		slog.Debug("command failed", slog.Any("error", err))
	}
	return ExitCode(err)
}

// printError prints an error the way every command reports failures
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)
	red.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}
