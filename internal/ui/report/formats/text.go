package formats

import (
	"cratedeps/internal/core/app"
	"cratedeps/internal/data/history"
	"fmt"
	"io"
	"strings"
)

type TextGenerator struct{}

func (TextGenerator) Reports(w io.Writer, reports []app.FileReport) error {
	var b strings.Builder

	for i, r := range reports {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Path + "\n")
		b.WriteString(fmt.Sprintf("  imports:      %s\n", joinOrNone(r.Imports)))
		b.WriteString(fmt.Sprintf("  test imports: %s\n", joinOrNone(r.TestImports)))
		b.WriteString(fmt.Sprintf("  hints:        %s\n", joinOrNone(hintNames(r))))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (TextGenerator) Runs(w io.Writer, runs []history.Run) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Analysis runs (%d)\n", len(runs)))
	for _, r := range runs {
		finished := "running"
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Sub(r.StartedAt).String()
		}
		b.WriteString(fmt.Sprintf("- %s  %s  %d files, %d failed (%s)\n",
			r.ID, formatTime(r.StartedAt), r.Files, r.Failures, finished))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
