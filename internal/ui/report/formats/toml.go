package formats

import (
	"cratedeps/internal/core/app"
	"cratedeps/internal/data/history"
	"io"

	"github.com/BurntSushi/toml"
)

type TOMLGenerator struct{}

type tomlReports struct {
	Files []app.FileReport `toml:"file"`
}

func (TOMLGenerator) Reports(w io.Writer, reports []app.FileReport) error {
	if reports == nil {
		reports = []app.FileReport{}
	}
	return toml.NewEncoder(w).Encode(tomlReports{Files: reports})
}

type tomlRun struct {
	ID         string `toml:"run_id"`
	StartedAt  string `toml:"started_at"`
	FinishedAt string `toml:"finished_at,omitempty"`
	Files      int    `toml:"files"`
	Failures   int    `toml:"failures"`
}

type tomlRuns struct {
	Runs []tomlRun `toml:"run"`
}

func (TOMLGenerator) Runs(w io.Writer, runs []history.Run) error {
	out := tomlRuns{Runs: make([]tomlRun, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, tomlRun{
			ID:         r.ID,
			StartedAt:  formatTime(r.StartedAt),
			FinishedAt: formatTime(r.FinishedAt),
			Files:      r.Files,
			Failures:   r.Failures,
		})
	}
	return toml.NewEncoder(w).Encode(out)
}
