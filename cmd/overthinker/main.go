// Command overthinker analyses decision scenarios: an interactive demo by
// default, plus one-shot and batch analysis and the HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// The CLI logs to stderr so stdout stays clean for --json output.
	logger := newLogger(os.Stderr, os.Getenv("ENV"))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger, buildApp)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger returns JSON in production and debug-level text otherwise.
func newLogger(w io.Writer, env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// appBuilder constructs the application graph. Tests substitute one that
// wires the rule-based model.
type appBuilder func(ctx context.Context, logger *slog.Logger, withStore bool) (*app, error)

func newRootCmd(logger *slog.Logger, build appBuilder) *cobra.Command {
	root := &cobra.Command{
		Use:           "overthinker",
		Short:         "Think a decision through from several angles",
		Long:          "Overthinker scores the risk and sentiment of a decision scenario, classifies\nits intent and lays out practical, financial, emotional and other perspectives.\n\nWith no subcommand it starts an interactive session.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd.Context(), logger, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return runDemo(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a)
		},
	}

	root.AddCommand(newAnalyzeCmd(logger, build), newServeCmd(logger, build))
	return root
}
