// =============================================================================
// OBX Importer - XPath Accessor
// =============================================================================
//
// This module wraps etree path queries so the quotation engine can read an
// OBX tree the same way regardless of which nodes are present.
//
// PATH DIALECT:
//   etree paths (./child, .//descendant, /absolute, [@attr='value'] filters)
//   plus one extra trailing step, /@name, which selects the attribute value
//   of every matched element. Elements lacking the attribute are skipped.
//
// ORDERING:
//   etree walks descendants breadth-first. The line-item and room
//   algorithms depend on document order, so every result is sorted by the
//   element's pre-order position in the tree.
//
// FAILURE MODE:
//   None. Missing nodes yield an empty result, "" or 0.
//
// =============================================================================

package converter

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// epsilon matches the smallest increment above 1.0 for float64. It nudges
// values like 1.005 over the rounding boundary before scaling.
const epsilon = 0x1p-52

// Money rounds a monetary value to two decimal places, half up.
func Money(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Floor((v+epsilon)*100+0.5) / 100
}

// =============================================================================
// NODES
// =============================================================================

// Node is a single query result: an element, or one attribute of it.
type Node struct {
	Element *etree.Element
	Attr    *etree.Attr
}

// TextContent returns the attribute value, or the concatenated character
// data of the element and all its descendants.
func (n Node) TextContent() string {
	if n.Attr != nil {
		return n.Attr.Value
	}
	if n.Element == nil {
		return ""
	}
	var sb strings.Builder
	writeText(&sb, n.Element)
	return sb.String()
}

func writeText(sb *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			writeText(sb, t)
		}
	}
}

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator runs path queries against one document. It is not shared
// between conversions; each call to the assembler builds its own.
type Evaluator struct {
	doc   *etree.Document
	order map[*etree.Element]int
	paths map[string]etree.Path
}

// NewEvaluator indexes doc for document-ordered queries. A nil document
// yields an evaluator whose queries all come back empty.
func NewEvaluator(doc *etree.Document) *Evaluator {
	e := &Evaluator{
		doc:   doc,
		order: make(map[*etree.Element]int),
		paths: make(map[string]etree.Path),
	}
	if doc != nil {
		e.index(&doc.Element)
	}
	return e
}

func (e *Evaluator) index(el *etree.Element) {
	e.order[el] = len(e.order)
	for _, child := range el.ChildElements() {
		e.index(child)
	}
}

// Document returns the document node used as context for absolute paths.
func (e *Evaluator) Document() *etree.Element {
	if e.doc == nil {
		return nil
	}
	return &e.doc.Element
}

// Get evaluates path relative to context and returns the matches in
// document order.
func (e *Evaluator) Get(path string, context *etree.Element) []Node {
	if context == nil {
		return nil
	}

	elemPath, attr := splitAttrStep(path)
	compiled, ok := e.compile(elemPath)
	if !ok {
		return nil
	}

	elems := context.FindElementsPath(compiled)
	sort.SliceStable(elems, func(i, j int) bool {
		return e.order[elems[i]] < e.order[elems[j]]
	})

	nodes := make([]Node, 0, len(elems))
	for _, el := range elems {
		if attr == "" {
			nodes = append(nodes, Node{Element: el})
			continue
		}
		if a := el.SelectAttr(attr); a != nil {
			nodes = append(nodes, Node{Element: el, Attr: a})
		}
	}
	return nodes
}

// String returns the text of the first match with tabs removed and
// surrounding whitespace trimmed. ok is false when nothing matched.
func (e *Evaluator) String(path string, context *etree.Element) (value string, ok bool) {
	nodes := e.Get(path, context)
	if len(nodes) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(nodes[0].TextContent(), "\t", "")), true
}

// StringOr is String with the missing case collapsed to "".
func (e *Evaluator) StringOr(path string, context *etree.Element) string {
	value, _ := e.String(path, context)
	return value
}

// Number reads a decimal written with either "," or "." as separator and
// money-rounds it. Missing or unparseable values read as 0.
func (e *Evaluator) Number(path string, context *etree.Element) float64 {
	value, ok := e.String(path, context)
	if !ok {
		value = "0"
	}
	n := parseNumber(value)
	if math.IsNaN(n) {
		return 0
	}
	return Money(n)
}

func (e *Evaluator) compile(path string) (etree.Path, bool) {
	if p, ok := e.paths[path]; ok {
		return p, true
	}
	p, err := etree.CompilePath(path)
	if err != nil {
		return etree.Path{}, false
	}
	e.paths[path] = p
	return p, true
}

// splitAttrStep separates a trailing /@name step from an element path.
func splitAttrStep(path string) (elemPath, attr string) {
	i := strings.LastIndex(path, "/@")
	if i < 0 || strings.ContainsAny(path[i+2:], "/[]") {
		return path, ""
	}
	return path[:i], path[i+2:]
}

// =============================================================================
// NUMBER PARSING
// =============================================================================

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseNumber reads the leading decimal literal of s after swapping the
// first comma for a dot. Trailing text such as units is ignored. It returns
// NaN when s does not start with a number.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	literal := numberPrefix.FindString(s)
	if literal == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
