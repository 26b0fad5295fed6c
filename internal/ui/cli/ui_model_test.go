package cli

import (
	coreapp "cratedeps/internal/core/app"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModel_UpdateBuildsItems(t *testing.T) {
	m := initialModel()

	updated, _ := m.Update(updateMsg{
		runID: "0123456789abcdef",
		reports: []coreapp.FileReport{
			{Path: "src/lib.rs", Imports: []string{"serde"}, TestImports: []string{"proptest"}},
			{Path: "src/util.rs"},
		},
		failures: []coreapp.FileFailure{
			{Path: "src/broken.rs", Err: errors.New("syntax error at 3:1")},
		},
	})

	state, ok := updated.(model)
	if !ok {
		t.Fatalf("expected model type, got %T", updated)
	}
	items := state.list.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	first := items[0].(item)
	if !first.failed || first.title != "src/broken.rs" {
		t.Fatalf("expected failure listed first, got %+v", first)
	}
	if got := items[1].(item).desc; got != "serde | test: proptest" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := items[2].(item).desc; got != "no crates" {
		t.Fatalf("unexpected description %q", got)
	}

	view := state.View()
	if !strings.Contains(view, "1 failed") || !strings.Contains(view, "run 01234567") {
		t.Fatalf("unexpected view header:\n%s", view)
	}
}

func TestModel_FailureClearedOnSuccess(t *testing.T) {
	m := initialModel()
	updated, _ := m.Update(updateMsg{
		failures: []coreapp.FileFailure{{Path: "a.rs", Err: errors.New("boom")}},
	})
	updated, _ = updated.(model).Update(updateMsg{
		reports: []coreapp.FileReport{{Path: "a.rs", Imports: []string{"log"}}},
	})

	state := updated.(model)
	if len(state.failures) != 0 {
		t.Fatalf("expected failure to clear, got %v", state.failures)
	}
	if !strings.Contains(state.View(), "1 crates") {
		t.Fatalf("expected crate count in view:\n%s", state.View())
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := initialModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
