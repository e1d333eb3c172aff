package adapter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/mouse-blink/blockscan/internal/domain"
	m "github.com/mouse-blink/blockscan/internal/model"
)

// Attribute names the scanner recognizes on template elements.
const (
	// classAttr lists styles that always apply to the element, as
	// block-qualified tokens like "primary.root".
	classAttr = "class"
	// dynamicClassAttr lists styles that apply conditionally at runtime.
	dynamicClassAttr = "data-class-if"
)

// styleResolver is the lookup surface the scanner needs from a bound
// block. CSSBlock satisfies it; blocks that do not are skipped.
type styleResolver interface {
	Style(fragment string) (domain.Style, bool)
}

// HTMLTemplateScanner walks HTML templates and feeds the element protocol
// of an analysis: one StartElement/EndElement pair per element, one
// AddStyle per resolved class token, MarkDynamic for conditional tokens.
type HTMLTemplateScanner struct{}

// NewHTMLTemplateScanner constructs a scanner.
func NewHTMLTemplateScanner() *HTMLTemplateScanner {
	return &HTMLTemplateScanner{}
}

// Scan parses the template at path and walks its element tree depth-first.
// Class tokens that do not resolve to a style of a bound block are plain
// CSS classes and are ignored.
func (sc *HTMLTemplateScanner) Scan(path m.Path, analysis *domain.Analysis) error {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	return sc.walk(doc, analysis)
}

func (sc *HTMLTemplateScanner) walk(node *html.Node, analysis *domain.Analysis) error {
	if node.Type == html.ElementNode {
		if err := sc.scanElement(node, analysis); err != nil {
			return err
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if err := sc.walk(child, analysis); err != nil {
			return err
		}
	}

	return nil
}

func (sc *HTMLTemplateScanner) scanElement(node *html.Node, analysis *domain.Analysis) error {
	if err := analysis.StartElement(); err != nil {
		return err
	}

	for _, token := range strings.Fields(attrValue(node, classAttr)) {
		if style, ok := resolveToken(analysis, token); ok {
			analysis.AddStyle(style)
		}
	}

	for _, token := range strings.Fields(attrValue(node, dynamicClassAttr)) {
		style, ok := resolveToken(analysis, token)
		if !ok {
			continue
		}

		analysis.AddStyle(style)

		if err := analysis.MarkDynamic(style); err != nil {
			return err
		}
	}

	analysis.EndElement()

	return nil
}

// resolveToken splits a block-qualified class token such as "primary.root"
// into a local block name and a selector fragment, and resolves it against
// the blocks bound to the analysis.
func resolveToken(analysis *domain.Analysis, token string) (domain.Style, bool) {
	name, rest, ok := strings.Cut(token, ".")
	if !ok || name == "" || rest == "" {
		return nil, false
	}

	block, ok := analysis.BlockForName(name)
	if !ok {
		return nil, false
	}

	resolver, ok := block.(styleResolver)
	if !ok {
		return nil, false
	}

	return resolver.Style("." + rest)
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}

	return ""
}
