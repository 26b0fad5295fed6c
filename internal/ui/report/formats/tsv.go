package formats

import (
	"cratedeps/internal/core/app"
	"cratedeps/internal/data/history"
	"fmt"
	"io"
	"strings"
	"time"
)

type TSVGenerator struct{}

func (TSVGenerator) Reports(w io.Writer, reports []app.FileReport) error {
	var buf strings.Builder

	buf.WriteString("Path\tImports\tTestImports\tHasMain\tHasTest\tHasProcMacro\tContentHash\n")
	for _, r := range reports {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%t\t%t\t%t\t%s\n",
			r.Path,
			joinOrDash(r.Imports),
			joinOrDash(r.TestImports),
			r.Hints.HasMain,
			r.Hints.HasTest,
			r.Hints.HasProcMacro,
			r.ContentHash,
		))
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func (TSVGenerator) Runs(w io.Writer, runs []history.Run) error {
	var buf strings.Builder

	buf.WriteString("RunID\tStartedAt\tFinishedAt\tFiles\tFailures\n")
	for _, r := range runs {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\n",
			r.ID,
			formatTime(r.StartedAt),
			formatTime(r.FinishedAt),
			r.Files,
			r.Failures,
		))
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
