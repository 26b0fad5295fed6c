package cli

import (
	coreapp "cratedeps/internal/core/app"
	"cratedeps/internal/shared/util"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	testStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	failed      bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + " " + i.desc }

type model struct {
	list       list.Model
	reports    []coreapp.FileReport
	failures   map[string]string
	lastUpdate time.Time
	lastRun    string
}

// updateMsg carries the full current state after an analysis batch.
type updateMsg struct {
	runID    string
	reports  []coreapp.FileReport
	failures []coreapp.FileFailure
	removed  []string
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.reports = msg.reports
		m.lastRun = msg.runID
		m.lastUpdate = time.Now()
		for _, path := range msg.removed {
			delete(m.failures, path)
		}
		for _, r := range msg.reports {
			delete(m.failures, r.Path)
		}
		for _, f := range msg.failures {
			m.failures[f.Path] = f.Err.Error()
		}
		m.list.SetItems(buildItems(m.reports, m.failures))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func buildItems(reports []coreapp.FileReport, failures map[string]string) []list.Item {
	items := make([]list.Item, 0, len(reports)+len(failures))
	for _, path := range util.SortedStringKeys(failures) {
		items = append(items, item{title: path, desc: failures[path], failed: true})
	}
	for _, r := range reports {
		desc := "no crates"
		if len(r.Imports) > 0 {
			desc = strings.Join(r.Imports, ", ")
		}
		if len(r.TestImports) > 0 {
			desc += " | test: " + strings.Join(r.TestImports, ", ")
		}
		items = append(items, item{title: r.Path, desc: desc})
	}
	return items
}

func (m model) View() string {
	crates := make(map[string]struct{})
	testCrates := make(map[string]struct{})
	for _, r := range m.reports {
		for _, c := range r.Imports {
			crates[c] = struct{}{}
		}
		for _, c := range r.TestImports {
			testCrates[c] = struct{}{}
		}
	}

	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | run %s",
		m.lastUpdate.Format("15:04:05"), len(m.reports), shortID(m.lastRun)))

	var summary string
	if len(m.failures) == 0 {
		summary = successStyle.Render(fmt.Sprintf("%d crates", len(crates)))
	} else {
		summary = failureStyle.Render(fmt.Sprintf("%d failed", len(m.failures)))
	}
	summary += " | " + testStyle.Render(fmt.Sprintf("%d test-only", len(testCrates)))

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Crate Dependency Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Analyzed Files"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		failures:   make(map[string]string),
		lastUpdate: time.Now(),
	}
}
