package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/app"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel  string
	logFormat string
	maxLoops  int
}

// config turns the global flags plus per-command settings into a validated
// app.Config. Invalid values are usage errors.
func (g *globalFlags) config(path string, set func(*app.Config)) (*app.Config, error) {
	cfg := app.Config{
		PipelinePath: path,
		LogLevel:     strings.ToLower(g.logLevel),
		LogFormat:    strings.ToLower(g.logFormat),
		MaxLoops:     g.maxLoops,
	}
	if set != nil {
		set(&cfg)
	}
	c, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	return c, nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("%s expects %d argument(s): %s, got %d", cmd.Name(), n, strings.Join(names, " "), len(args))
		}
		return nil
	}
}

// NewRootCommand returns the command tree. Command output goes to outW, logs
// and cobra messages to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "pipe",
		Short: "Run dataflow pipelines of connected nodes",
		Long: "pipe loads pipelines from YAML documents or HCL definitions and runs\n" +
			"them, routing data between nodes along labelled edges.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	f := root.PersistentFlags()
	f.StringVar(&g.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	f.StringVar(&g.logFormat, "log-format", "text", "Log output format: text or json.")
	f.IntVar(&g.maxLoops, "max-loops", 0, "Override the maximum number of visits per node and run. 0 keeps the pipeline's own limit.")

	root.AddCommand(
		newRunCommand(g, errW),
		newValidateCommand(g, errW),
		newConvertCommand(g, errW),
		newInspectCommand(g, errW),
		newActionsCommand(g, errW),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) && strings.HasPrefix(err.Error(), "unknown command") {
		return usageError("%v", err)
	}
	return err
}
