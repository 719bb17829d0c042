package converter

import (
	"fmt"

	"github.com/beevik/etree"
)

// Paths into the OBX tree used by the room resolver.
const (
	pathFolders      = "/cutBuffer/items/bskFolder"
	pathItems        = "/cutBuffer/items"
	pathFolderLabel  = "./label[@lang='de']"
	pathPositions    = "./setArticle"
	pathPositionText = "./description[@default='1']/text[@lang='de']"
	pathArticles     = "./bskArticle"
)

// Position is a root node whose direct bskArticle children become line
// items, together with the text prepended to each item's description.
type Position struct {
	Prefix string
	Root   *etree.Element
}

// Prefixes resolves the (prefix, root) pairs of the document.
//
// Without folders the item container is the only root and the prefix is
// empty. With one or more folders every setArticle inside them becomes a
// root, in folder order, prefixed "<folder label> | <position text>\n".
// Returns nil when the document has no item container at all.
func (e *Evaluator) Prefixes() []Position {
	folders := e.Get(pathFolders, e.Document())
	if len(folders) == 0 {
		items := e.Get(pathItems, e.Document())
		if len(items) == 0 {
			return nil
		}
		return []Position{{Prefix: "", Root: items[0].Element}}
	}

	var positions []Position
	for _, folder := range folders {
		positions = append(positions, e.positions(folder.Element)...)
	}
	return positions
}

func (e *Evaluator) positions(folder *etree.Element) []Position {
	label := e.StringOr(pathFolderLabel, folder)

	var positions []Position
	for _, pos := range e.Get(pathPositions, folder) {
		positions = append(positions, Position{
			Prefix: fmt.Sprintf("%s | %s\n", label, e.StringOr(pathPositionText, pos.Element)),
			Root:   pos.Element,
		})
	}
	return positions
}

// articles returns the direct article children of every resolved root.
func (e *Evaluator) articles() []articleRef {
	var refs []articleRef
	for _, pos := range e.Prefixes() {
		for _, node := range e.Get(pathArticles, pos.Root) {
			refs = append(refs, articleRef{prefix: pos.Prefix, node: node.Element})
		}
	}
	return refs
}

type articleRef struct {
	prefix string
	node   *etree.Element
}

// CountArticles returns the number of top-level articles in doc.
func CountArticles(doc *etree.Document) int {
	return len(NewEvaluator(doc).articles())
}
