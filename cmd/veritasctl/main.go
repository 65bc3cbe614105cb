// Command veritasctl runs the veritas pipeline from the terminal without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/veritas/internal/app"
	"github.com/kailas-cloud/veritas/internal/config"
	logpkg "github.com/kailas-cloud/veritas/internal/logger"
	chiTransport "github.com/kailas-cloud/veritas/internal/transport/chi"
	"github.com/kailas-cloud/veritas/internal/version"
)

type options struct {
	configPath string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "veritasctl",
		Short:        "Query and inspect the veritas credibility pipeline",
		Version:      fmt.Sprintf("%s (%s)", version.Version, version.Commit),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: config/<ENV>.yaml)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall command timeout")

	root.AddCommand(newQueryCmd(opts), newInspectCmd(opts), newModelCmd(opts))
	return root
}

func newQueryCmd(opts *options) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "query <prompt>",
		Short: "Search, classify and rank results for a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			resp, err := a.Pipeline.Run(ctx, args[0], maxResults)
			if err != nil {
				return err
			}
			return printJSON(cmd, chiTransport.ResponseToAPI(resp))
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results (0: server default)")
	return cmd
}

func newInspectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <url>",
		Short: "Fetch and classify a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			it, err := a.Pipeline.Inspect(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, chiTransport.ItemToAPI(it))
		},
	}
}

func newModelCmd(opts *options) *cobra.Command {
	model := &cobra.Command{
		Use:   "model",
		Short: "Model artifact commands",
	}
	model.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Load the vectorizer/classifier pair and print its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if !a.Model.Available() {
				return fmt.Errorf("model artifacts could not be loaded")
			}
			return printJSON(cmd, a.Model.Info())
		},
	})
	return model
}

// build assembles the services without a database: no fetch cache, no persisted budget.
func build(ctx context.Context, opts *options) (*app.App, error) {
	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	// stdout carries the JSON result; keep stderr quiet below warn.
	if logger.Core().Enabled(zap.InfoLevel) {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}

	return app.Build(ctx, cfg, nil, logger), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
