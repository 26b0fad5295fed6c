package cli

import (
	"context"
	coreapp "cratedeps/internal/core/app"
	"cratedeps/internal/core/config"
	domainerrors "cratedeps/internal/core/errors"
	"cratedeps/internal/shared/observability"
	"cratedeps/internal/ui/report/formats"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "cratedeps v%s\n", versionString)
		return 0
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose, stderr)
	defer cleanupLogs()

	if err := validateModeCompatibility(opts); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
		if err := config.Validate(cfg); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return 2
		}
	}
	if opts.history && !cfg.DB.Enabled {
		fmt.Fprintln(stderr, "--history requires [db] enabled = true in the config")
		return 1
	}

	gen, err := formats.ForFormat(cfg.Output.Format)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		OTLPEndpoint: cfg.Observability.OTLPEndpoint,
		OTLPInsecure: cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				slog.Warn("failed to flush traces", "error", err)
			}
		}()
	}

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("failed to close app", "error", err)
		}
	}()

	if opts.history {
		return runHistoryMode(app, gen, opts.args, stdout, stderr)
	}

	files, err := app.ScanDirectories(opts.args)
	if err != nil {
		slog.Error("failed to scan paths", "error", err)
		return 1
	}

	summary, err := app.AnalyzePaths(ctx, files)
	if err != nil {
		slog.Error("analysis aborted", "error", err)
		return 1
	}

	if !opts.ui {
		if err := gen.Reports(stdout, summary.Reports); err != nil {
			slog.Error("failed to write reports", "error", err)
			return 1
		}
		printFailures(stderr, summary.Failures)
	}

	if !opts.watch {
		if len(summary.Failures) > 0 {
			return 1
		}
		return 0
	}
	return runWatchMode(ctx, app, gen, opts, summary, stdout, stderr)
}

func validateModeCompatibility(opts cliOptions) error {
	if opts.ui && !opts.watch {
		return fmt.Errorf("--ui requires --watch")
	}
	if opts.history && opts.watch {
		return fmt.Errorf("--history cannot be combined with --watch")
	}
	if !opts.history && len(opts.args) == 0 {
		return fmt.Errorf("usage: cratedeps [flags] <file-or-dir>...")
	}
	return nil
}

// loadConfig loads path. A missing file at the default location falls back
// to built-in defaults; an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && os.IsNotExist(err) {
		slog.Debug("no config file found, using defaults", "path", path)
		cfg = config.DefaultConfig()
		config.ApplyEnvOverrides(cfg)
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, err
}

func printFailures(w io.Writer, failures []coreapp.FileFailure) {
	for _, f := range failures {
		fmt.Fprintf(w, "%s: %v\n", f.Path, f.Err)
	}
}

func runHistoryMode(app *coreapp.App, gen formats.Generator, args []string, stdout, stderr io.Writer) int {
	store := app.Store()

	if len(args) == 0 {
		runs, err := store.ListRuns(0)
		if err != nil {
			slog.Error("failed to load runs", "error", err)
			return 1
		}
		if err := gen.Runs(stdout, runs); err != nil {
			slog.Error("failed to write runs", "error", err)
			return 1
		}
		return 0
	}

	files, err := app.ScanDirectories(args)
	if err != nil {
		slog.Error("failed to scan paths", "error", err)
		return 1
	}

	reports := make([]coreapp.FileReport, 0, len(files))
	var missing []coreapp.FileFailure
	for _, path := range files {
		stored, ok, err := store.LoadReport(path)
		if err != nil {
			slog.Error("failed to load stored report", "path", path, "error", err)
			return 1
		}
		if !ok {
			missing = append(missing, coreapp.FileFailure{
				Path: path,
				Err:  domainerrors.New(domainerrors.CodeNotFound, "no stored report"),
			})
			continue
		}
		reports = append(reports, coreapp.FromHistory(stored))
	}
	if err := gen.Reports(stdout, reports); err != nil {
		slog.Error("failed to write reports", "error", err)
		return 1
	}
	printFailures(stderr, missing)
	if len(missing) > 0 {
		return 1
	}
	return 0
}

func runWatchMode(ctx context.Context, app *coreapp.App, gen formats.Generator, opts cliOptions, initial coreapp.RunSummary, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Config.Observability.Enabled {
		server := observability.NewServer(app.Config.Observability.Address, app.Health)
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	if opts.ui {
		if err := runUI(ctx, app, opts.args, initial); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	notify := func(changes coreapp.ChangeSet) {
		if len(changes.Updated) > 0 {
			if err := gen.Reports(stdout, changes.Updated); err != nil {
				slog.Error("failed to write reports", "error", err)
			}
		}
		for _, path := range changes.Removed {
			slog.Info("file removed", "path", path)
		}
		printFailures(stderr, changes.Failures)
	}
	if err := app.StartWatcher(ctx, opts.args, notify); err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	slog.Info("watching for changes", "paths", opts.args)
	<-ctx.Done()
	return 0
}
