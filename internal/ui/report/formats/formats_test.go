package formats

import (
	"bytes"
	"cratedeps/internal/core/app"
	"cratedeps/internal/core/errors"
	"cratedeps/internal/data/history"
	"cratedeps/internal/engine/imports"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports() []app.FileReport {
	return []app.FileReport{
		{
			Path:        "src/main.rs",
			Imports:     []string{"clap", "serde"},
			TestImports: []string{"proptest"},
			Hints:       imports.Hints{HasMain: true, HasTest: true},
			ContentHash: "abc",
		},
		{
			Path:        "src/lib.rs",
			Imports:     []string{},
			TestImports: []string{},
			ContentHash: "def",
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"json", "TOML", " tsv ", "text"} {
		g, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotNil(t, g)
	}

	_, err := ForFormat("yaml")
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestJSONReports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONGenerator{}.Reports(&buf, sampleReports()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "src/main.rs", decoded[0]["path"])
	assert.Equal(t, []any{"clap", "serde"}, decoded[0]["imports"])
	assert.Equal(t, []any{"proptest"}, decoded[0]["test_imports"])
	assert.Equal(t, map[string]any{"has_main": true, "has_test": true, "has_proc_macro": false}, decoded[0]["hints"])
	assert.Equal(t, []any{}, decoded[1]["imports"])
	assert.Equal(t, "def", decoded[1]["content_hash"])
}

func TestJSONReportsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONGenerator{}.Reports(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestTOMLReports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TOMLGenerator{}.Reports(&buf, sampleReports()))

	var decoded tomlReports
	_, err := toml.Decode(buf.String(), &decoded)
	require.NoError(t, err, buf.String())
	require.Len(t, decoded.Files, 2)
	assert.Equal(t, []string{"clap", "serde"}, decoded.Files[0].Imports)
	assert.True(t, decoded.Files[0].Hints.HasMain)
	assert.Contains(t, buf.String(), "[[file]]")
}

func TestTSVReports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TSVGenerator{}.Reports(&buf, sampleReports()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Path\tImports\tTestImports\tHasMain\tHasTest\tHasProcMacro\tContentHash", lines[0])
	assert.Equal(t, "src/main.rs\tclap,serde\tproptest\ttrue\ttrue\tfalse\tabc", lines[1])
	assert.Equal(t, "src/lib.rs\t-\t-\tfalse\tfalse\tfalse\tdef", lines[2])
}

func TestTextReports(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextGenerator{}.Reports(&buf, sampleReports()))

	out := buf.String()
	assert.Contains(t, out, "src/main.rs\n  imports:      clap, serde\n")
	assert.Contains(t, out, "  hints:        main, test\n")
	assert.Contains(t, out, "src/lib.rs\n  imports:      (none)\n")
}

func TestRuns(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []history.Run{
		{ID: "r2", StartedAt: started.Add(time.Hour), Files: 4},
		{ID: "r1", StartedAt: started, FinishedAt: started.Add(2 * time.Second), Files: 3, Failures: 1},
	}

	var tsv bytes.Buffer
	require.NoError(t, TSVGenerator{}.Runs(&tsv, runs))
	assert.Contains(t, tsv.String(), "r1\t2026-03-01T12:00:00Z\t2026-03-01T12:00:02Z\t3\t1\n")

	var text bytes.Buffer
	require.NoError(t, TextGenerator{}.Runs(&text, runs))
	assert.Contains(t, text.String(), "Analysis runs (2)")
	assert.Contains(t, text.String(), "r2  2026-03-01T13:00:00Z  4 files, 0 failed (running)")
	assert.Contains(t, text.String(), "(2s)")

	var js bytes.Buffer
	require.NoError(t, JSONGenerator{}.Runs(&js, runs))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	_, hasFinish := decoded[0]["finished_at"]
	assert.False(t, hasFinish)
	assert.Equal(t, "r1", decoded[1]["run_id"])

	var tm bytes.Buffer
	require.NoError(t, TOMLGenerator{}.Runs(&tm, runs))
	assert.Contains(t, tm.String(), "[[run]]")
}
