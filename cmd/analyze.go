package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/blockscan/internal/domain"
	m "github.com/mouse-blink/blockscan/internal/model"
)

var analyzeBlockFlags []string
var analyzeParallelFlag int

// analyzeCmd represents the analyze command.
var analyzeCmd = newAnalyzeCmd()

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [templates...]",
		Short: "Analyze templates against their block stylesheets",
		Long: `Analyze walks each template, records block style references, dynamic
styles and per-element correlations, and stores one canonical analysis
per template in the reports directory.

Blocks are bound under template-local names:
  blockscan analyze index.html --block primary=nav.block.css`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			blocks, err := parseBlockFlags(analyzeBlockFlags)
			if err != nil {
				return err
			}

			results, err := analyzer.Analyze(domain.AnalyzeArgs{
				Templates: parsePaths(args),
				Blocks:    blocks,
				Threads:   analyzeParallelFlag,
			})
			if err != nil {
				return err
			}

			if err := analysisStore.SaveAnalyses(m.Path(reportsDirFlag), results); err != nil {
				return err
			}

			return ui.DisplaySummaries(summarize(results))
		},
	}
	cmd.Flags().StringArrayVarP(&analyzeBlockFlags, "block", "b", nil, "block binding in the format NAME=STYLESHEET (can be repeated)")
	cmd.Flags().IntVarP(&analyzeParallelFlag, "parallel", "p", 1, "number of templates analyzed in parallel")

	return cmd
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func parseBlockFlags(flags []string) (map[string]m.Path, error) {
	blocks := make(map[string]m.Path, len(flags))

	for _, flag := range flags {
		name, path, ok := strings.Cut(flag, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid block binding %q, expected NAME=STYLESHEET", flag)
		}

		blocks[name] = m.Path(path)
	}

	return blocks, nil
}

func summarize(analyses []m.SerializedAnalysis) []m.AnalysisSummary {
	summaries := make([]m.AnalysisSummary, 0, len(analyses))

	for _, analysis := range analyses {
		summaries = append(summaries, m.AnalysisSummary{
			Template:     analysis.Template.Identifier,
			Blocks:       len(analysis.Blocks),
			Styles:       len(analysis.StylesFound),
			Dynamic:      len(analysis.DynamicStyles),
			Correlations: len(analysis.StyleCorrelations),
		})
	}

	return summaries
}
