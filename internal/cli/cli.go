package cli

import (
	"context"
	"errors"
	"io"

	"github.com/specialistvlad/monogrid/internal/app"
	"github.com/specialistvlad/monogrid/internal/ci"
	"github.com/specialistvlad/monogrid/internal/target"
	"github.com/specialistvlad/monogrid/internal/vcs"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks errors caused by invalid invocation.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usage(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

// usageArgs wraps a positional argument validator so its failures are
// reported as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return usage(validate(cmd, args))
	}
}

// Execute runs the command line and maps failures onto an ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, getenv func(string) string) error {
	root := NewRootCommand(outW, errW, getenv)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var usageErr *usageError
	switch {
	case errors.As(err, &usageErr),
		errors.Is(err, target.ErrInvalidFormat),
		errors.Is(err, ci.ErrInvalidShard):
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}

// options holds the persistent flags.
type options struct {
	cfg     app.Config
	outW    io.Writer
	errW    io.Writer
	workers int
}

// NewRootCommand builds the command tree. Defaults for the persistent flags
// are read through getenv.
func NewRootCommand(outW, errW io.Writer, getenv func(string) string) *cobra.Command {
	opts := &options{cfg: app.DefaultConfig(getenv), outW: outW, errW: errW}

	root := &cobra.Command{
		Use:   "monogrid",
		Short: "Run tasks across the projects of a monorepo",
		Long: `Monogrid builds a graph of the projects in a workspace and of the actions
needed to run their tasks, then runs those actions concurrently in
dependency order, reusing cached results where inputs are unchanged.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usage(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfg.WorkspaceRoot, "workspace", "", "Workspace root. Defaults to the nearest parent holding .monogrid.")
	flags.StringVar(&opts.cfg.LogLevel, "log-level", opts.cfg.LogLevel, "Logging level: 'debug', 'info', 'warn' or 'error'.")
	flags.StringVar(&opts.cfg.LogFormat, "log-format", opts.cfg.LogFormat, "Log output format: 'text' or 'json'.")
	flags.StringVar(&opts.cfg.CacheMode, "cache", opts.cfg.CacheMode, "Cache mode: 'read-write', 'read', 'write' or 'off'.")
	flags.IntVar(&opts.workers, "concurrency", 0, "Maximum actions run at once. Defaults to the workspace setting.")
	flags.IntVar(&opts.cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")

	root.AddCommand(
		runCmd(opts),
		ciCmd(opts),
		projectCmd(opts),
		projectGraphCmd(opts),
		depGraphCmd(opts),
		queryCmd(opts),
	)
	return root
}

// withApp validates the configuration, loads the workspace and runs fn.
func (o *options) withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg := o.cfg
	cfg.Concurrency = o.workers
	appConfig, err := app.NewConfig(cfg)
	if err != nil {
		return usage(err)
	}

	a := app.NewApp(o.outW, o.errW, appConfig, nil)
	if err := a.Load(ctx); err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func runCmd(opts *options) *cobra.Command {
	var runOpts app.RunOptions
	cmd := &cobra.Command{
		Use:   "run <target>... [-- <args>]",
		Short: "Run targets and their dependencies",
		Long: `Run one or more targets, written as <project>:<task>, after every action they
depend on. A target without a project, like :lint, runs the task in every
project declaring it. Arguments after -- are passed to the requested
targets only.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			runOpts.Targets = args
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				runOpts.Targets = args[:dash]
				runOpts.Passthrough = args[dash:]
			}
			if len(runOpts.Targets) == 0 {
				return usage(errors.New("at least one target is required"))
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.Run(ctx, runOpts)
			})
		},
	}
	cmd.Flags().BoolVar(&runOpts.Dependents, "dependents", false, "Also run the task in projects that depend on each target's project.")
	cmd.Flags().BoolVar(&runOpts.Affected, "affected", false, "Only run targets affected by uncommitted changes.")
	cmd.Flags().StringVar(&runOpts.Profile, "profile", "", "Profile the requested targets: 'cpu' or 'heap'.")
	return cmd
}

func ciCmd(opts *options) *cobra.Command {
	var (
		ciOpts   app.CIOptions
		job      int
		jobTotal int
	)
	cmd := &cobra.Command{
		Use:   "ci",
		Short: "Run every target affected between two revisions",
		Long: `Gather the files touched between --base and --head, run every CI eligible
task they affect together with its dependents, and report the results.
With --job and --job-total the targets are split across parallel jobs.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("job") && cmd.Flags().Changed("job-total") {
				ciOpts.Job = &job
				ciOpts.JobTotal = &jobTotal
			}
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.CI(ctx, ciOpts)
			})
		},
	}
	cmd.Flags().StringVar(&ciOpts.Base, "base", "", "Base revision to compare against. Defaults to the default branch.")
	cmd.Flags().StringVar(&ciOpts.Head, "head", "", "Head revision. Defaults to HEAD.")
	cmd.Flags().IntVar(&job, "job", 0, "Zero based index of this job.")
	cmd.Flags().IntVar(&jobTotal, "job-total", 0, "Total number of parallel jobs.")
	return cmd
}

func projectCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "project <id>",
		Short: "Display information about a project",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.Project(ctx, args[0], asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the project as JSON.")
	return cmd
}

func projectGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "project-graph [id]",
		Short: "Print the project graph in DOT format",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.ProjectGraph(ctx, firstArg(args))
			})
		},
	}
}

func depGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dep-graph [target]",
		Short: "Print the action graph in DOT format",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.DepGraph(ctx, firstArg(args))
			})
		},
	}
}

func queryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query information about the workspace",
	}

	var touchedOpts vcs.TouchedOptions
	touched := &cobra.Command{
		Use:   "touched-files",
		Short: "List files touched locally or between two revisions, as JSON",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.TouchedFiles(ctx, touchedOpts)
			})
		},
	}
	touched.Flags().StringVar(&touchedOpts.Base, "base", "", "Base revision to compare against.")
	touched.Flags().StringVar(&touchedOpts.Head, "head", "", "Head revision.")
	touched.Flags().BoolVar(&touchedOpts.Local, "local", false, "List uncommitted changes instead.")

	cmd.AddCommand(touched)
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
