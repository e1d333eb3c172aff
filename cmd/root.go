// Package cmd provides the root command and CLI setup for blockscan.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mouse-blink/blockscan/internal/adapter"
	"github.com/mouse-blink/blockscan/internal/controller"
	"github.com/mouse-blink/blockscan/internal/domain"
	m "github.com/mouse-blink/blockscan/internal/model"
)

var factory *domain.TemplateInfoFactory
var blockStore domain.BlockStore
var scanner domain.TemplateScanner
var analyzer domain.Analyzer
var analysisStore adapter.AnalysisStore
var ui controller.UI

func init() {
	factory = domain.NewTemplateInfoFactory()
	blockStore = adapter.NewLocalBlockStore()
	scanner = adapter.NewHTMLTemplateScanner()
	analyzer = domain.NewAnalyzer(blockStore, scanner, factory)
	analysisStore = adapter.NewLocalAnalysisStore()
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
}

var reportsDirFlag string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blockscan",
		Short: "Template style-analysis tool",
		Long: `Blockscan records which block styles a template references, which of
them apply conditionally, and which styles co-occur on the same element.
The canonical analyses it writes are consumed by a style optimizer to
decide which styles may be safely merged, deduplicated, or eliminated.`,
	}
	cmd.PersistentFlags().StringVarP(&reportsDirFlag, "reports", "r", ".blockscan-analyses", "directory for stored analyses")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
