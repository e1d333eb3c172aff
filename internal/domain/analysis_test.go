package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

// fakeBlock and fakeStyle are pointer handles, matching the identity
// semantics the engine relies on.
type fakeBlock struct {
	source string
	deps   []Block
}

func (b *fakeBlock) Source() string                  { return b.source }
func (b *fakeBlock) TransitiveDependencies() []Block { return b.deps }

type fakeStyle struct {
	block    Block
	fragment string
}

func (s *fakeStyle) Block() Block     { return s.block }
func (s *fakeStyle) Fragment() string { return s.fragment }

func newTestAnalysis() *Analysis {
	return NewAnalysis(NewFileTemplateInfo("templates/index.html"))
}

func mustStart(t *testing.T, a *Analysis) {
	t.Helper()

	if err := a.StartElement(); err != nil {
		t.Fatalf("StartElement failed: %v", err)
	}
}

func mustMarkDynamic(t *testing.T, a *Analysis, style Style) {
	t.Helper()

	if err := a.MarkDynamic(style); err != nil {
		t.Fatalf("MarkDynamic failed: %v", err)
	}
}

func TestAnalysis_Serialize_TwoElementTemplate(t *testing.T) {
	blockA := &fakeBlock{source: ".a.css"}
	blockB := &fakeBlock{source: ".b.css"}
	p1 := &fakeStyle{block: blockA, fragment: ".root"}
	p2 := &fakeStyle{block: blockA, fragment: ".icon"}
	h1 := &fakeStyle{block: blockB, fragment: ".pad"}

	a := newTestAnalysis()
	a.AddBlockReference("primary", blockA)
	a.AddBlockReference("helper", blockB)

	mustStart(t, a)
	a.AddStyle(p1)
	a.AddStyle(h1)
	a.EndElement()

	mustStart(t, a)
	a.AddStyle(p2)
	mustMarkDynamic(t, a, p2)
	a.EndElement()

	for _, style := range []Style{p1, p2, h1} {
		if !a.WasFound(style) {
			t.Fatalf("expected %s to be found", style.Fragment())
		}
	}

	if !a.IsDynamic(p2) {
		t.Fatalf("expected p2 to be dynamic")
	}

	if a.IsDynamic(p1) || a.IsDynamic(h1) {
		t.Fatalf("expected only p2 to be dynamic")
	}

	wire := a.Serialize()

	if wire.Template.Type != TemplateInfoTypeFile || wire.Template.Identifier != "templates/index.html" {
		t.Fatalf("unexpected template descriptor: %+v", wire.Template)
	}

	wantBlocks := map[string]string{"primary": ".a.css", "helper": ".b.css"}
	if !reflect.DeepEqual(wire.Blocks, wantBlocks) {
		t.Fatalf("unexpected blocks: %v", wire.Blocks)
	}

	wantStyles := []string{"helper.pad", "primary.icon", "primary.root"}
	if !reflect.DeepEqual(wire.StylesFound, wantStyles) {
		t.Fatalf("unexpected stylesFound: %v", wire.StylesFound)
	}

	if !reflect.DeepEqual(wire.DynamicStyles, []int{1}) {
		t.Fatalf("unexpected dynamicStyles: %v", wire.DynamicStyles)
	}

	// The second element contributed a single style and is dropped.
	if !reflect.DeepEqual(wire.StyleCorrelations, [][]int{{0, 2}}) {
		t.Fatalf("unexpected styleCorrelations: %v", wire.StyleCorrelations)
	}
}

func TestAnalysis_Serialize_TraversalOrderInvariant(t *testing.T) {
	blockA := &fakeBlock{source: ".a.css"}
	blockB := &fakeBlock{source: ".b.css"}
	p1 := &fakeStyle{block: blockA, fragment: ".root"}
	p2 := &fakeStyle{block: blockA, fragment: ".icon"}
	h1 := &fakeStyle{block: blockB, fragment: ".pad"}

	first := newTestAnalysis()
	first.AddBlockReference("primary", blockA)
	first.AddBlockReference("helper", blockB)

	mustStart(t, first)
	first.AddStyle(p1)
	first.AddStyle(h1)
	first.EndElement()
	mustStart(t, first)
	first.AddStyle(p2)
	first.EndElement()

	// Same tree, styles reported in a different valid order.
	second := newTestAnalysis()
	second.AddBlockReference("primary", blockA)
	second.AddBlockReference("helper", blockB)

	mustStart(t, second)
	second.AddStyle(p2)
	second.EndElement()
	mustStart(t, second)
	second.AddStyle(h1)
	second.AddStyle(p1)
	second.EndElement()

	firstBytes, err := json.Marshal(first.Serialize())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	secondBytes, err := json.Marshal(second.Serialize())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(firstBytes) != string(secondBytes) {
		t.Fatalf("expected byte-identical output:\n%s\n%s", firstBytes, secondBytes)
	}
}

func TestAnalysis_AddStyle_Idempotent(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}
	y := &fakeStyle{block: block, fragment: ".y"}

	a := newTestAnalysis()
	a.AddBlockReference("a", block)

	mustStart(t, a)
	a.AddStyle(x)
	a.AddStyle(x)
	a.AddStyle(y)
	a.EndElement()

	if a.StyleCount() != 2 {
		t.Fatalf("expected 2 distinct styles, got %d", a.StyleCount())
	}

	wire := a.Serialize()

	if len(wire.StylesFound) != 2 {
		t.Fatalf("expected 2 stylesFound, got %v", wire.StylesFound)
	}

	if !reflect.DeepEqual(wire.StyleCorrelations, [][]int{{0, 1}}) {
		t.Fatalf("expected one pair correlation, got %v", wire.StyleCorrelations)
	}
}

func TestAnalysis_AddStyle_DistinctInstancesStayDistinct(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	first := &fakeStyle{block: block, fragment: ".x"}
	second := &fakeStyle{block: block, fragment: ".x"}

	a := newTestAnalysis()
	a.AddStyle(first)
	a.AddStyle(second)

	// Structurally equal but distinct instances must not collapse.
	if a.StyleCount() != 2 {
		t.Fatalf("expected 2 styles, got %d", a.StyleCount())
	}
}

func TestAnalysis_StartElement_FailsOnOpenElement(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}

	a := newTestAnalysis()

	mustStart(t, a)
	a.AddStyle(x)

	err := a.StartElement()
	if !errors.Is(err, ErrElementOpen) {
		t.Fatalf("expected ErrElementOpen, got %v", err)
	}
}

func TestAnalysis_StartElement_EmptyElementIsFine(t *testing.T) {
	a := newTestAnalysis()

	mustStart(t, a)
	// No styles on this element.
	if err := a.StartElement(); err != nil {
		t.Fatalf("expected empty element to be committable, got %v", err)
	}

	mustStart(t, a)
	a.EndElement()
	mustStart(t, a)
}

func TestAnalysis_MarkDynamic_RequiresAddStyle(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}

	a := newTestAnalysis()

	err := a.MarkDynamic(x)
	if !errors.Is(err, ErrStyleNotFound) {
		t.Fatalf("expected ErrStyleNotFound, got %v", err)
	}

	a.AddStyle(x)
	mustMarkDynamic(t, a, x)

	if !a.IsDynamic(x) {
		t.Fatalf("expected x to be dynamic")
	}
}

func TestAnalysis_AddStyle_OpensElementImplicitly(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}
	y := &fakeStyle{block: block, fragment: ".y"}

	a := newTestAnalysis()
	a.AddStyle(x)
	a.AddStyle(y)
	a.EndElement()

	if !a.AreCorrelated(x, y) {
		t.Fatalf("expected implicitly opened element to correlate x and y")
	}
}

func TestAnalysis_AreCorrelated(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}
	y := &fakeStyle{block: block, fragment: ".y"}
	z := &fakeStyle{block: block, fragment: ".z"}
	lone := &fakeStyle{block: block, fragment: ".lone"}

	a := newTestAnalysis()

	mustStart(t, a)
	a.AddStyle(x)
	a.AddStyle(y)
	a.AddStyle(z)
	a.EndElement()

	mustStart(t, a)
	a.AddStyle(lone)
	a.EndElement()

	tests := []struct {
		name   string
		styles []Style
		want   bool
	}{
		{name: "pair on same element", styles: []Style{x, y}, want: true},
		{name: "full element set", styles: []Style{x, y, z}, want: true},
		{name: "single member of committed element", styles: []Style{z}, want: true},
		{name: "singleton element still counts as membership", styles: []Style{lone}, want: true},
		{name: "styles from different elements", styles: []Style{x, lone}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.AreCorrelated(tt.styles...); got != tt.want {
				t.Fatalf("AreCorrelated() = %v, want %v", got, tt.want)
			}
		})
	}

	never := &fakeStyle{block: block, fragment: ".never"}
	if a.AreCorrelated(never) {
		t.Fatalf("expected unseen style to not correlate")
	}
}

func TestAnalysis_Serialize_DropsSingletonCorrelations(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}

	a := newTestAnalysis()
	a.AddBlockReference("a", block)

	mustStart(t, a)
	a.AddStyle(x)
	a.EndElement()

	wire := a.Serialize()

	if !reflect.DeepEqual(wire.StylesFound, []string{"a.x"}) {
		t.Fatalf("expected style in stylesFound, got %v", wire.StylesFound)
	}

	if len(wire.StyleCorrelations) != 0 {
		t.Fatalf("expected no correlations, got %v", wire.StyleCorrelations)
	}
}

func TestAnalysis_Serialize_OpenElementOmitted(t *testing.T) {
	block := &fakeBlock{source: ".a.css"}
	x := &fakeStyle{block: block, fragment: ".x"}
	y := &fakeStyle{block: block, fragment: ".y"}

	a := newTestAnalysis()
	a.AddBlockReference("a", block)

	mustStart(t, a)
	a.AddStyle(x)
	a.AddStyle(y)
	mustMarkDynamic(t, a, y)

	// Element never committed: styles count, correlation does not.
	wire := a.Serialize()

	if len(wire.StylesFound) != 2 {
		t.Fatalf("expected open element styles in stylesFound, got %v", wire.StylesFound)
	}

	if len(wire.DynamicStyles) != 1 {
		t.Fatalf("expected open element dynamic style, got %v", wire.DynamicStyles)
	}

	if len(wire.StyleCorrelations) != 0 {
		t.Fatalf("expected uncommitted correlation to be absent, got %v", wire.StyleCorrelations)
	}
}

func TestAnalysis_Serialize_UnboundBlockGetsEmptyName(t *testing.T) {
	bound := &fakeBlock{source: ".a.css"}
	unbound := &fakeBlock{source: ".b.css"}
	x := &fakeStyle{block: bound, fragment: ".x"}
	stray := &fakeStyle{block: unbound, fragment: ".stray"}

	a := newTestAnalysis()
	a.AddBlockReference("a", bound)
	a.AddStyle(x)
	a.AddStyle(stray)
	a.EndElement()

	wire := a.Serialize()

	if !reflect.DeepEqual(wire.StylesFound, []string{".stray", "a.x"}) {
		t.Fatalf("unexpected stylesFound: %v", wire.StylesFound)
	}
}

func TestAnalysis_BlockQueries(t *testing.T) {
	depOfDep := &fakeBlock{source: ".c.css"}
	dep := &fakeBlock{source: ".b.css", deps: []Block{depOfDep}}
	block := &fakeBlock{source: ".a.css", deps: []Block{dep, depOfDep}}

	a := newTestAnalysis()
	a.AddBlockReference("main", block)
	a.AddBlockReference("alias", block)

	name, ok := a.LocalBlockName(block)
	if !ok || name != "main" {
		t.Fatalf("expected first binding name, got %q (ok=%v)", name, ok)
	}

	if _, ok := a.LocalBlockName(dep); ok {
		t.Fatalf("expected unbound block to have no local name")
	}

	if got, ok := a.BlockForName("alias"); !ok || got != Block(block) {
		t.Fatalf("expected alias to resolve to block")
	}

	refs := a.ReferencedBlocks()
	if len(refs) != 2 || refs[0] != Block(block) || refs[1] != Block(block) {
		t.Fatalf("expected duplicate references, got %v", refs)
	}

	direct := a.BlockDependencies()
	if len(direct) != 1 {
		t.Fatalf("expected identity-deduplicated direct deps, got %d", len(direct))
	}

	transitive := a.TransitiveBlockDependencies()
	for _, b := range []Block{block, dep, depOfDep} {
		if _, ok := transitive[b]; !ok {
			t.Fatalf("expected %s in transitive deps", b.Source())
		}
	}

	if len(transitive) != 3 {
		t.Fatalf("expected 3 transitive deps, got %d", len(transitive))
	}
}
