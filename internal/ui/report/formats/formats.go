// Package formats renders file reports and the run log in the supported
// output formats.
package formats

import (
	"cratedeps/internal/core/app"
	"cratedeps/internal/core/errors"
	"cratedeps/internal/data/history"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	TOML = "toml"
	TSV  = "tsv"
	Text = "text"
)

// Generator renders reports and runs in one format.
type Generator interface {
	Reports(w io.Writer, reports []app.FileReport) error
	Runs(w io.Writer, runs []history.Run) error
}

// ForFormat returns the generator for name (case-insensitive).
func ForFormat(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case JSON:
		return JSONGenerator{}, nil
	case TOML:
		return TOMLGenerator{}, nil
	case TSV:
		return TSVGenerator{}, nil
	case Text:
		return TextGenerator{}, nil
	}
	return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unknown output format %q", name))
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func hintNames(r app.FileReport) []string {
	out := make([]string, 0, 3)
	if r.Hints.HasMain {
		out = append(out, "main")
	}
	if r.Hints.HasTest {
		out = append(out, "test")
	}
	if r.Hints.HasProcMacro {
		out = append(out, "proc_macro")
	}
	return out
}
