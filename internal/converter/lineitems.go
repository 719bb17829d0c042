package converter

import (
	"fmt"
	"math"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/beevik/etree"
)

// lineGroup is one article's priced line followed by the text items that
// describe its components.
type lineGroup struct {
	lead  *types.LineItem
	texts []*types.LineItem
}

// createLineItem builds the priced line for a top-level article.
//
// The unit price rolls in every nested component price (scaled by the
// multiplier) whatever the display mode. In long mode the component list
// follows as separate text items; in short mode the first chunk of it is
// appended to the description and any further chunks are dropped.
func (g *engine) createLineItem(article *etree.Element, prefix string) lineGroup {
	e := g.eval

	name := e.StringOr(pathFinalArtNr, article) + " | " + e.StringOr(pathShortText, article)
	price := e.Number(pathSalePrice, article) * g.multiplier
	currency := e.StringOr(pathSaleCurrency, article)
	if currency == "" {
		currency = types.DefaultCurrency
	}

	subItems := g.createSubItems(article, fmt.Sprintf("1x %s | je %s %s\n", name, fixed2(price), currency))

	description, ok := e.String(pathFeatureText, article)
	if !ok {
		description = e.StringOr(pathLongText, article)
	}
	description = prefix + description
	if !g.includeDescription && len(subItems) > 0 {
		description += "\n\n" + subItems[0].Name + "\n" + subItems[0].Description
	}

	net := price
	for _, node := range e.Get(pathComponentPrices, article) {
		if v := parseNumber(node.TextContent()); !math.IsNaN(v) {
			net += v * g.multiplier
		}
	}

	group := lineGroup{
		lead: types.NewCustomItem(name, description, types.UnitPiece, currency, Money(net)),
	}
	if g.includeDescription {
		group.texts = subItems
	}
	return group
}

// processDocument builds and aggregates the line items of every article in
// the engine's document.
func (g *engine) processDocument(groupLineItems bool) []*types.LineItem {
	refs := g.eval.articles()
	groups := make([]lineGroup, 0, len(refs))
	for _, ref := range refs {
		groups = append(groups, g.createLineItem(ref.node, ref.prefix))
	}
	return g.aggregateDuplicateLists(groups, groupLineItems)
}
