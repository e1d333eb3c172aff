// Package adapter contains infrastructure adapters bridging the analysis
// engine to templates, stylesheets and storage.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/mouse-blink/blockscan/internal/domain"
	m "github.com/mouse-blink/blockscan/internal/model"
)

// CSSBlock is a block backed by one stylesheet on disk. It implements
// domain.Block; handles are pointers, so the engine's identity semantics
// hold as long as blocks come from one store.
type CSSBlock struct {
	source string
	styles map[string]*ClassStyle
	deps   []domain.Block
}

// Source returns the stylesheet path the block was loaded from.
func (b *CSSBlock) Source() string { return b.source }

// TransitiveDependencies reports every block reachable through @import,
// directly or indirectly. Import cycles are absorbed by the visited set.
func (b *CSSBlock) TransitiveDependencies() []domain.Block {
	visited := map[domain.Block]struct{}{b: {}}

	var collect func(block *CSSBlock) []domain.Block

	collect = func(block *CSSBlock) []domain.Block {
		var deps []domain.Block

		for _, dep := range block.deps {
			if _, seen := visited[dep]; seen {
				continue
			}

			visited[dep] = struct{}{}

			deps = append(deps, dep)
			if cssDep, ok := dep.(*CSSBlock); ok {
				deps = append(deps, collect(cssDep)...)
			}
		}

		return deps
	}

	return collect(b)
}

// Style returns the block's style handle for a selector fragment such as
// ".root".
func (b *CSSBlock) Style(fragment string) (domain.Style, bool) {
	style, ok := b.styles[fragment]
	return style, ok
}

// Styles returns the block's style handles sorted by fragment.
func (b *CSSBlock) Styles() []domain.Style {
	fragments := make([]string, 0, len(b.styles))
	for fragment := range b.styles {
		fragments = append(fragments, fragment)
	}

	sort.Strings(fragments)

	styles := make([]domain.Style, 0, len(fragments))
	for _, fragment := range fragments {
		styles = append(styles, b.styles[fragment])
	}

	return styles
}

// ClassStyle is one class rule of a CSSBlock. It implements domain.Style.
type ClassStyle struct {
	block    *CSSBlock
	fragment string
}

// Block returns the owning block.
func (s *ClassStyle) Block() domain.Block { return s.block }

// Fragment returns the class selector fragment, e.g. ".root".
func (s *ClassStyle) Fragment() string { return s.fragment }

// LocalBlockStore loads block stylesheets from the local filesystem. Loads
// are cached by path: asking for the same stylesheet twice returns the same
// handle, which is what the engine's identity semantics require.
type LocalBlockStore struct {
	cache map[m.Path]*CSSBlock
}

// NewLocalBlockStore constructs an empty store.
func NewLocalBlockStore() *LocalBlockStore {
	return &LocalBlockStore{cache: make(map[m.Path]*CSSBlock)}
}

// Load parses the stylesheet at path into a block handle. Class selectors
// become the block's styles; @import rules become block dependencies,
// resolved relative to the importing file.
func (s *LocalBlockStore) Load(path m.Path) (domain.Block, error) {
	if block, ok := s.cache[path]; ok {
		return block, nil
	}

	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read block stylesheet: %w", err)
	}

	sheet, err := parser.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse block stylesheet %s: %w", path, err)
	}

	block := &CSSBlock{
		source: string(path),
		styles: make(map[string]*ClassStyle),
	}

	// Cache before resolving imports so import cycles terminate on the
	// already-present handle.
	s.cache[path] = block

	for _, rule := range sheet.Rules {
		switch rule.Kind {
		case css.QualifiedRule:
			for _, selector := range rule.Selectors {
				if fragment, ok := classFragment(selector); ok {
					if _, exists := block.styles[fragment]; !exists {
						block.styles[fragment] = &ClassStyle{block: block, fragment: fragment}
					}
				}
			}
		case css.AtRule:
			if rule.Name != "@import" {
				continue
			}

			target := importTarget(rule.Prelude)
			if target == "" {
				continue
			}

			depPath := m.Path(filepath.Join(filepath.Dir(string(path)), target))

			dep, err := s.Load(depPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load import of %s: %w", path, err)
			}

			block.deps = append(block.deps, dep)
		}
	}

	return block, nil
}

// classFragment extracts the leading class fragment from a selector:
// ".root:hover" yields ".root". Selectors not rooted in a class are not
// addressable block styles.
func classFragment(selector string) (string, bool) {
	selector = strings.TrimSpace(selector)
	if !strings.HasPrefix(selector, ".") {
		return "", false
	}

	end := len(selector)

	for i := 1; i < len(selector); i++ {
		c := selector[i]
		if !(c == '-' || c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			end = i
			break
		}
	}

	if end == 1 {
		return "", false
	}

	return selector[:end], true
}

// importTarget extracts the file reference from an @import prelude,
// accepting both `"file.css"` and `url(file.css)` forms.
func importTarget(prelude string) string {
	target := strings.TrimSpace(prelude)
	target = strings.TrimSuffix(target, ";")

	if strings.HasPrefix(target, "url(") && strings.HasSuffix(target, ")") {
		target = target[len("url(") : len(target)-1]
	}

	target = strings.Trim(target, `"'`)

	return strings.TrimSpace(target)
}
