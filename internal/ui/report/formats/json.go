package formats

import (
	"cratedeps/internal/core/app"
	"cratedeps/internal/data/history"
	"encoding/json"
	"io"
	"time"
)

type JSONGenerator struct{}

func (JSONGenerator) Reports(w io.Writer, reports []app.FileReport) error {
	if reports == nil {
		reports = []app.FileReport{}
	}
	return encodeJSON(w, reports)
}

type jsonRun struct {
	ID         string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Files      int        `json:"files"`
	Failures   int        `json:"failures"`
}

func (JSONGenerator) Runs(w io.Writer, runs []history.Run) error {
	out := make([]jsonRun, 0, len(runs))
	for _, r := range runs {
		row := jsonRun{ID: r.ID, StartedAt: r.StartedAt, Files: r.Files, Failures: r.Failures}
		if !r.FinishedAt.IsZero() {
			finished := r.FinishedAt
			row.FinishedAt = &finished
		}
		out = append(out, row)
	}
	return encodeJSON(w, out)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
