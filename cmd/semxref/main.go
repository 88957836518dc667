// Package main provides the semxref binary entry point.
// Semxref resolves identifiers and builds cross-reference associations for
// biomedical knowledge graph ingest.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semxref/config"
	"github.com/c360studio/semxref/ingest"
	"github.com/c360studio/semxref/source/rows"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semxref"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err, plus the offending row for structural input errors.
func reportError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	var se *rows.StructuralError
	if errors.As(err, &se) && len(se.Row) > 0 {
		_, _ = fmt.Fprintf(w, "Row %d: %s\n", se.Line, strings.Join(se.Row, "\t"))
	}
}

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Identifier resolution and cross-reference engine",
		Long: `Semxref resolves identifiers from upstream biomedical sources and
writes cross-reference associations into a knowledge graph.

Sources: genereviews, biogrid.
Sinks: turtle, ntriples, nats, neo4j, sqlite, postgres.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		ingestCmd(g),
		curieCmd(g),
		mapCmd(g),
		serveCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// newLogger configures the process logger from --log-level.
func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// setup loads configuration and builds the App.
func (g *globals) setup(ctx context.Context) (*App, error) {
	logger := newLogger(g.logLevel)

	cfg, err := config.NewLoader(logger).Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApp(ctx, cfg, logger)
}

func ingestCmd(g *globals) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ingest [sources...]",
		Short: "Run source ingests into the configured sink",
		Long: `Run the named sources, or every registered source when none is given.
With --watch, sources are re-run whenever their raw files change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app, err := g.setup(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(context.Background()); err != nil {
					app.logger.Error("Shutdown failed", "error", err)
				}
			}()

			for _, name := range args {
				if _, err := app.sources.Get(name); err != nil {
					return err
				}
			}

			runner, err := app.Runner(ctx)
			if err != nil {
				return err
			}
			if _, err := runner.Run(ctx, args...); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return app.watch(ctx, runner)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run sources when raw files change")
	return cmd
}

// watch blocks re-running sources on raw file changes until ctx is done.
func (a *App) watch(ctx context.Context, runner *ingest.Runner) error {
	if a.cfg.Raw.Driver != config.RawDriverFS {
		return fmt.Errorf("watch requires the %s raw driver", config.RawDriverFS)
	}

	w, err := ingest.NewWatcher(a.cfg.Raw.Dir, a.sources, a.cfg.Watch.Debounce, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	err = ingest.Watch(ctx, w, runner, a.logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
