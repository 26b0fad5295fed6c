// Package cli implements the cratedeps command line.
package cli

import (
	"flag"
	"io"
)

const versionString = "1.0.0"
const defaultConfigPath = "./cratedeps.toml"

type cliOptions struct {
	configPath string
	format     string
	watch      bool
	ui         bool
	history    bool
	verbose    bool
	version    bool
	args       []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("cratedeps", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, "usage: cratedeps [flags] <file-or-dir>...\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.format, "format", "", "Output format: json, toml, tsv or text (default from config)")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and re-analyze changed .rs files")
	fs.BoolVar(&opts.ui, "ui", false, "Enable terminal UI mode (requires --watch)")
	fs.BoolVar(&opts.history, "history", false, "Print persisted runs, or stored reports of the given paths")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}
