package domain

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/blockscan/internal/model"
)

// BlockStore loads block stylesheets into block handles. One handle per
// stylesheet: the engine relies on reference identity, so the store must
// return the same handle for the same loaded stylesheet.
type BlockStore interface {
	Load(path m.Path) (Block, error)
}

// TemplateScanner walks one template and drives the analysis through the
// element protocol. The scanner owns traversal order; the engine's
// canonical serialization makes that order irrelevant to the output.
type TemplateScanner interface {
	Scan(path m.Path, analysis *Analysis) error
}

// AnalyzeArgs bundles the inputs for one analyzer run.
type AnalyzeArgs struct {
	// Templates lists the template files to analyze.
	Templates []m.Path
	// Blocks maps template-local block names to block stylesheet paths.
	Blocks map[string]m.Path
	// Threads caps the number of templates analyzed concurrently.
	Threads int
}

// Analyzer runs the analysis engine over a set of templates.
type Analyzer interface {
	Analyze(args AnalyzeArgs) ([]m.SerializedAnalysis, error)
}

type analyzer struct {
	blocks  BlockStore
	scanner TemplateScanner
	factory *TemplateInfoFactory
}

// NewAnalyzer creates an Analyzer wired to the provided collaborators. The
// factory must be fully registered before Analyze is called.
func NewAnalyzer(blocks BlockStore, scanner TemplateScanner, factory *TemplateInfoFactory) Analyzer {
	return &analyzer{
		blocks:  blocks,
		scanner: scanner,
		factory: factory,
	}
}

// Analyze loads the referenced blocks once, then fans out over the
// templates with one exclusively-owned Analysis per template. Results come
// back in input order.
func (an *analyzer) Analyze(args AnalyzeArgs) ([]m.SerializedAnalysis, error) {
	threads := args.Threads
	if threads <= 0 {
		threads = 1
	}

	names := make([]string, 0, len(args.Blocks))
	for name := range args.Blocks {
		names = append(names, name)
	}

	sort.Strings(names)

	bindings := make([]blockBinding, 0, len(names))

	for _, name := range names {
		block, err := an.blocks.Load(args.Blocks[name])
		if err != nil {
			return nil, fmt.Errorf("failed to load block %q: %w", name, err)
		}

		bindings = append(bindings, blockBinding{name: name, block: block})
	}

	results := make([]m.SerializedAnalysis, len(args.Templates))

	var g errgroup.Group

	g.SetLimit(threads)

	for i, template := range args.Templates {
		g.Go(func() error {
			info, err := an.factory.Create(TemplateInfoTypeFile, string(template))
			if err != nil {
				return err
			}

			analysis := NewAnalysis(info)
			for _, b := range bindings {
				analysis.AddBlockReference(b.name, b.block)
			}

			if err := an.scanner.Scan(template, analysis); err != nil {
				return fmt.Errorf("failed to analyze %s: %w", template, err)
			}

			results[i] = analysis.Serialize()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
