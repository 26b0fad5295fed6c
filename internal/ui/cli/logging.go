package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const logFileName = "cratedeps.log"

// configureLogging installs the default slog logger and returns a closer.
// Reports own stdout, so logs go to stderr; the TUI owns the terminal, so in
// UI mode logs go to a state file instead.
func configureLogging(uiMode, verbose bool, stderr io.Writer) func() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	sink, closer := stderr, func() {}
	if uiMode {
		path := resolveLogPath()
		if f, err := openLogFile(path); err != nil {
			fmt.Fprintf(stderr, "warning: logging to stderr: %v\n", err)
		} else {
			sink, closer = f, func() { _ = f.Close() }
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level})))
	return closer
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir for %s: %w", path, err)
	}
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("log path %s is a symlink", path)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// resolveLogPath prefers $XDG_STATE_HOME, then ~/.local/state, then the
// working directory.
func resolveLogPath() string {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, "cratedeps", logFileName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "cratedeps", logFileName)
	}
	return logFileName
}
