package cmd

import (
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/blockscan/internal/model"
)

var viewYAMLFlag bool

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View previously stored analyses",
		Long:  "View previously stored analyses from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := analysisStore.LoadAnalyses(m.Path(reportsDirFlag), factory)
			if err != nil {
				return err
			}

			wires := make([]m.SerializedAnalysis, 0, len(loaded))
			for _, l := range loaded {
				wires = append(wires, l.Wire)
			}

			if viewYAMLFlag {
				return ui.DisplayWire(wires)
			}

			return ui.DisplaySummaries(summarize(wires))
		},
	}
	cmd.Flags().BoolVar(&viewYAMLFlag, "yaml", false, "dump the full wire form as YAML")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
