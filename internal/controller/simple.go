package controller

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	m "github.com/mouse-blink/blockscan/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySummaries prints one table row per analyzed template.
func (s *SimpleUI) DisplaySummaries(summaries []m.AnalysisSummary) error {
	if len(summaries) == 0 {
		s.printf("No analyses found\n")
		return nil
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Template", "Blocks", "Styles", "Dynamic", "Correlations"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	totalStyles := 0

	for _, summary := range summaries {
		table.Append([]string{
			summary.Template,
			fmt.Sprintf("%d", summary.Blocks),
			fmt.Sprintf("%d", summary.Styles),
			fmt.Sprintf("%d", summary.Dynamic),
			fmt.Sprintf("%d", summary.Correlations),
		})

		totalStyles += summary.Styles
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Templates %d", len(summaries)),
		"",
		fmt.Sprintf("%d", totalStyles),
		"",
		"",
	})

	table.Render()
	s.printf("%s\n\n%s", headerStyle.Render("Template style analysis"), tableBuffer.String())

	return nil
}

// DisplayWire dumps the wire form of each analysis as YAML.
func (s *SimpleUI) DisplayWire(analyses []m.SerializedAnalysis) error {
	if len(analyses) == 0 {
		s.printf("No analyses found\n")
		return nil
	}

	data, err := yaml.Marshal(analyses)
	if err != nil {
		return fmt.Errorf("failed to render analyses: %w", err)
	}

	s.printf("%s", data)

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
