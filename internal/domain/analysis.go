package domain

import (
	"fmt"
	"sort"

	m "github.com/mouse-blink/blockscan/internal/model"
)

// Analysis records which styles a template references, which of them apply
// conditionally, and which sets of styles co-occur on the same element. An
// external walker drives one Analysis through repeated element-scoped calls
// during a single traversal; afterwards Serialize produces the canonical
// wire form consumed by the optimizer and the analysis cache.
//
// Each Analysis is exclusively owned by the walk that created it. All
// methods are synchronous and touch memory only.
//
// The per-element protocol is strict: StartElement, any number of AddStyle
// calls, EndElement. A non-empty element left uncommitted is a bug in the
// walker and surfaces as ErrElementOpen on the next StartElement. After any
// returned error the Analysis is in an undefined state for further
// mutation; discard it and restart the analysis for that template.
type Analysis struct {
	template TemplateInfo

	// blocks holds local-name bindings in insertion order. Local-name
	// uniqueness is the caller's obligation and is not checked here.
	blocks []blockBinding

	stylesFound   map[Style]struct{}
	dynamicStyles map[Style]struct{}

	// styleCorrelations holds one committed snapshot per element that had
	// at least one style, in commit order. Snapshots are never mutated
	// after EndElement appends them.
	styleCorrelations []map[Style]struct{}

	// currentCorrelation is the scratch set of the element currently being
	// walked; nil while no element is open.
	currentCorrelation map[Style]struct{}
}

type blockBinding struct {
	name  string
	block Block
}

// NewAnalysis creates an empty analysis for the given template.
func NewAnalysis(template TemplateInfo) *Analysis {
	return &Analysis{
		template:      template,
		stylesFound:   make(map[Style]struct{}),
		dynamicStyles: make(map[Style]struct{}),
	}
}

// Template returns the descriptor this analysis was created for.
func (a *Analysis) Template() TemplateInfo { return a.template }

// AddBlockReference binds a block under a template-local name. Binding the
// same name twice is not detected; callers must keep names unique within
// one analysis.
func (a *Analysis) AddBlockReference(localName string, block Block) {
	a.blocks = append(a.blocks, blockBinding{name: localName, block: block})
}

// AddStyle records that the template references style. When no element is
// open the style opens one implicitly, so styles reported between
// StartElement calls still land in a correlation. Adding the same style
// instance twice within one element has no additional effect.
func (a *Analysis) AddStyle(style Style) {
	a.stylesFound[style] = struct{}{}

	if a.currentCorrelation == nil {
		a.currentCorrelation = make(map[Style]struct{})
	}

	a.currentCorrelation[style] = struct{}{}
}

// MarkDynamic records that style may apply conditionally at runtime. The
// style must already have been added with AddStyle.
func (a *Analysis) MarkDynamic(style Style) error {
	if _, found := a.stylesFound[style]; !found {
		return fmt.Errorf("%w: %s", ErrStyleNotFound, styleName(a, style))
	}

	a.dynamicStyles[style] = struct{}{}

	return nil
}

// StartElement begins a new element context. It fails when the previous
// element accumulated styles that were never committed with EndElement.
func (a *Analysis) StartElement() error {
	if len(a.currentCorrelation) > 0 {
		return ErrElementOpen
	}

	a.currentCorrelation = make(map[Style]struct{})

	return nil
}

// EndElement commits the current element. A non-empty scratch set is
// appended to the correlation list as an immutable snapshot; an element
// without styles leaves no trace.
func (a *Analysis) EndElement() {
	if len(a.currentCorrelation) > 0 {
		snapshot := make(map[Style]struct{}, len(a.currentCorrelation))
		for style := range a.currentCorrelation {
			snapshot[style] = struct{}{}
		}

		a.styleCorrelations = append(a.styleCorrelations, snapshot)
	}

	a.currentCorrelation = nil
}

// LocalBlockName returns the first local name, in binding order, under
// which block was bound. The second result is false when block was never
// bound.
func (a *Analysis) LocalBlockName(block Block) (string, bool) {
	for _, b := range a.blocks {
		if b.block == block {
			return b.name, true
		}
	}

	return "", false
}

// BlockForName returns the block bound under localName, using the first
// binding in insertion order. The second result is false when the name was
// never bound.
func (a *Analysis) BlockForName(localName string) (Block, bool) {
	for _, b := range a.blocks {
		if b.name == localName {
			return b.block, true
		}
	}

	return nil, false
}

// ReferencedBlocks returns every bound block in binding order. A block
// bound under two names appears twice.
func (a *Analysis) ReferencedBlocks() []Block {
	blocks := make([]Block, 0, len(a.blocks))
	for _, b := range a.blocks {
		blocks = append(blocks, b.block)
	}

	return blocks
}

// BlockDependencies returns the identity-set of blocks the template
// references directly.
func (a *Analysis) BlockDependencies() map[Block]struct{} {
	deps := make(map[Block]struct{}, len(a.blocks))
	for _, b := range a.blocks {
		deps[b.block] = struct{}{}
	}

	return deps
}

// TransitiveBlockDependencies returns the identity-set of blocks the
// template depends on directly or indirectly. Each block reports its own
// transitive set, so one union pass reaches the fixpoint; identity-set
// membership absorbs dependency cycles without explicit tracking.
func (a *Analysis) TransitiveBlockDependencies() map[Block]struct{} {
	deps := a.BlockDependencies()
	for _, b := range a.blocks {
		for _, dep := range b.block.TransitiveDependencies() {
			deps[dep] = struct{}{}
		}
	}

	return deps
}

// AreCorrelated reports whether some single element carried all the given
// styles at once. With one argument it reports whether the style appeared
// on any committed element at all.
func (a *Analysis) AreCorrelated(styles ...Style) bool {
	for _, correlation := range a.styleCorrelations {
		all := true

		for _, style := range styles {
			if _, ok := correlation[style]; !ok {
				all = false
				break
			}
		}

		if all {
			return true
		}
	}

	return false
}

// IsDynamic reports whether style was marked as conditionally applied.
func (a *Analysis) IsDynamic(style Style) bool {
	_, ok := a.dynamicStyles[style]
	return ok
}

// WasFound reports whether style was referenced anywhere in the template.
func (a *Analysis) WasFound(style Style) bool {
	_, ok := a.stylesFound[style]
	return ok
}

// StyleCount returns the number of distinct styles found.
func (a *Analysis) StyleCount() int { return len(a.stylesFound) }

// DynamicCount returns the number of styles marked dynamic.
func (a *Analysis) DynamicCount() int { return len(a.dynamicStyles) }

// CorrelationCount returns the number of committed correlations.
func (a *Analysis) CorrelationCount() int { return len(a.styleCorrelations) }

// Serialize produces the canonical wire form. Styles are keyed by their
// canonical name (bound local block name plus source fragment) and sorted,
// so two walks of semantically identical trees serialize identically no
// matter the traversal order.
//
// Calling Serialize while an element is still open is not an error: the
// found and dynamic sets already reflect the open element's styles, but
// its correlation is absent until EndElement commits it. Callers are
// expected to close all elements before serializing.
func (a *Analysis) Serialize() m.SerializedAnalysis {
	blocks := make(map[string]string, len(a.blocks))
	for _, b := range a.blocks {
		blocks[b.name] = b.block.Source()
	}

	names := make([]string, 0, len(a.stylesFound))
	byName := make(map[string][]Style, len(a.stylesFound))

	for style := range a.stylesFound {
		name := styleName(a, style)
		names = append(names, name)
		byName[name] = append(byName[name], style)
	}

	sort.Strings(names)

	index := make(map[Style]int, len(a.stylesFound))

	for i, name := range names {
		candidates := byName[name]
		index[candidates[len(candidates)-1]] = i
		byName[name] = candidates[:len(candidates)-1]
	}

	dynamic := make([]int, 0, len(a.dynamicStyles))
	for style := range a.dynamicStyles {
		dynamic = append(dynamic, index[style])
	}

	sort.Ints(dynamic)

	correlations := make([][]int, 0, len(a.styleCorrelations))

	for _, correlation := range a.styleCorrelations {
		// Singleton correlations carry no co-occurrence information.
		if len(correlation) < 2 {
			continue
		}

		indices := make([]int, 0, len(correlation))
		for style := range correlation {
			indices = append(indices, index[style])
		}

		sort.Ints(indices)
		correlations = append(correlations, indices)
	}

	return m.SerializedAnalysis{
		Template:          a.template.Serialize(),
		Blocks:            blocks,
		StylesFound:       names,
		DynamicStyles:     dynamic,
		StyleCorrelations: correlations,
	}
}

// styleName builds the canonical name of a style within this analysis: the
// local name of its owning block followed by the style's own source
// fragment, with an empty block name when the block was never bound.
func styleName(a *Analysis, style Style) string {
	name, _ := a.LocalBlockName(style.Block())
	return name + style.Fragment()
}
