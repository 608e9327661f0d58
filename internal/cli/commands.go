package cli

import (
	"fmt"
	"io"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/app"
	"github.com/spf13/cobra"
)

func newRunCommand(g *globalFlags, logW io.Writer) *cobra.Command {
	var flags struct {
		input      string
		params     string
		batch      string
		workers    int
		table      bool
		noValidate bool
	}

	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Run a pipeline once, or once per item of a batch",
		Args:  exactArgs(1, "<pipeline>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config(args[0], func(c *app.Config) {
				c.Workers = flags.workers
				c.SkipValidation = flags.noValidate
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a := app.NewApp(out, logW, cfg)

			if flags.batch != "" {
				inputs, err := app.ParseBatch(flags.batch)
				if err != nil {
					return usageError("invalid --batch: %v", err)
				}
				results, err := a.RunBatch(cmd.Context(), inputs)
				if err != nil {
					return err
				}
				return app.WriteResults(out, results, flags.table)
			}

			data, err := app.ParseDocument(flags.input)
			if err != nil {
				return usageError("invalid --input: %v", err)
			}
			params, err := app.ParseDocument(flags.params)
			if err != nil {
				return usageError("invalid --params: %v", err)
			}
			res, err := a.Run(cmd.Context(), data, params)
			if err != nil {
				return err
			}
			return app.WriteResult(out, res, flags.table)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Input data as JSON or YAML, or @file.")
	f.StringVarP(&flags.params, "params", "p", "", "Per-node parameters as JSON or YAML, or @file.")
	f.StringVar(&flags.batch, "batch", "", "A list of {data, parameters} items as JSON or YAML, or @file.")
	f.IntVarP(&flags.workers, "workers", "w", 1, "Number of concurrent runs for --batch.")
	f.BoolVar(&flags.table, "table", false, "Print results as tables instead of YAML.")
	f.BoolVar(&flags.noValidate, "no-validate", false, "Skip validation when loading.")
	cmd.MarkFlagsMutuallyExclusive("batch", "input")
	cmd.MarkFlagsMutuallyExclusive("batch", "params")
	return cmd
}

func newValidateCommand(g *globalFlags, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline>",
		Short: "Load a pipeline and report whether it is valid",
		Args:  exactArgs(1, "<pipeline>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config(args[0], nil)
			if err != nil {
				return err
			}
			if err := app.NewApp(cmd.OutOrStdout(), logW, cfg).Validate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pipeline '%s' is valid.\n", args[0])
			return nil
		},
	}
}

func newConvertCommand(g *globalFlags, logW io.Writer) *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "convert <pipeline> <out.yaml>",
		Short: "Save a pipeline as a YAML document",
		Args:  exactArgs(2, "<pipeline>", "<out.yaml>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config(args[0], func(c *app.Config) { c.SkipValidation = noValidate })
			if err != nil {
				return err
			}
			if err := app.NewApp(cmd.OutOrStdout(), logW, cfg).Convert(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved '%s' to '%s'.\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip validation when loading.")
	return cmd
}

func newInspectCommand(g *globalFlags, logW io.Writer) *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "inspect <pipeline>",
		Short: "Print the nodes and edges of a pipeline",
		Args:  exactArgs(1, "<pipeline>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.config(args[0], func(c *app.Config) { c.SkipValidation = noValidate })
			if err != nil {
				return err
			}
			d, err := app.NewApp(cmd.OutOrStdout(), logW, cfg).Describe(cmd.Context())
			if err != nil {
				return err
			}
			return app.WriteDescription(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip validation when loading.")
	return cmd
}

func newActionsCommand(g *globalFlags, logW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List the actions nodes can be built from",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			// No pipeline is loaded; any path satisfies the config check.
			cfg, err := g.config(".", nil)
			if err != nil {
				return err
			}
			return app.WriteActions(cmd.OutOrStdout(), app.NewApp(cmd.OutOrStdout(), logW, cfg).Registry())
		},
	}
}
