package controller

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/blockscan/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplaySummaries shows analysis summaries in a browsable list.
func (t *TUI) DisplaySummaries(summaries []m.AnalysisSummary) error {
	model := newSummaryModel(summaries)

	// Get initial terminal size
	if f, ok := t.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.list.SetSize(width, height-2)
			model.sized = true
		}
	}

	// If the list fits on one screen, just print and exit
	if !model.needsProgram() {
		_, err := fmt.Fprint(t.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// DisplayWire dumps the wire form of each analysis as YAML. The wire form
// is non-interactive output, so it never starts a program.
func (t *TUI) DisplayWire(analyses []m.SerializedAnalysis) error {
	if len(analyses) == 0 {
		_, err := fmt.Fprintln(t.output, "No analyses found")
		return err
	}

	data, err := yaml.Marshal(analyses)
	if err != nil {
		return fmt.Errorf("failed to render analyses: %w", err)
	}

	_, err = t.output.Write(data)

	return err
}

// summaryItem adapts an AnalysisSummary to the bubbles list.
type summaryItem struct {
	summary m.AnalysisSummary
}

func (i summaryItem) FilterValue() string { return i.summary.Template }

// summaryDelegate renders one analysis per line.
type summaryDelegate struct{}

func (d summaryDelegate) Height() int  { return 1 }
func (d summaryDelegate) Spacing() int { return 0 }
func (d summaryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d summaryDelegate) Render(w io.Writer, lm list.Model, index int, item list.Item) {
	entry, ok := item.(summaryItem)
	if !ok {
		return
	}

	isSelected := index == lm.Index()

	var pathStyle, countStyle lipgloss.Style

	if isSelected {
		pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("6")).
			Bold(true)
		countStyle = pathStyle
	} else {
		pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
	}

	counts := fmt.Sprintf("%d styles, %d dynamic, %d correlated",
		entry.summary.Styles, entry.summary.Dynamic, entry.summary.Correlations)

	line := fmt.Sprintf("%s  %s",
		pathStyle.Render(entry.summary.Template),
		countStyle.Render(counts),
	)
	_, _ = fmt.Fprint(w, line)
}

// summaryModel is the Bubble Tea model for browsing analyses.
type summaryModel struct {
	list  list.Model
	sized bool
}

func newSummaryModel(summaries []m.AnalysisSummary) summaryModel {
	items := make([]list.Item, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, summaryItem{summary: summary})
	}

	l := list.New(items, summaryDelegate{}, 80, 20)
	l.Title = "Blockscan - Template Style Analysis"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.FilterInput.Placeholder = "Filter by template…"

	return summaryModel{list: l}
}

// needsProgram reports whether the list is worth an interactive session.
func (sm summaryModel) needsProgram() bool {
	return sm.sized && len(sm.list.Items()) > sm.list.Paginator.PerPage
}

func (sm summaryModel) Init() tea.Cmd {
	return nil
}

func (sm summaryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		sm.list.SetSize(msg.Width, msg.Height-2)
		sm.sized = true

		return sm, nil

	case tea.KeyMsg:
		if sm.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c", "esc":
				return sm, tea.Quit
			}
		}
	}

	var cmd tea.Cmd

	sm.list, cmd = sm.list.Update(msg)

	return sm, cmd
}

func (sm summaryModel) View() string {
	if len(sm.list.Items()) == 0 {
		return "No analyses found\n"
	}

	return sm.list.View() + "\n"
}
