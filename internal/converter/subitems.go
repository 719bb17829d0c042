package converter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const (
	// maxTextLength is the character budget of one text line item.
	maxTextLength = 2000

	titleComposition          = "Bestehend aus:"
	titleCompositionContinued = "Bestehend aus (Fortsetzung):"
)

// Paths read from every article, top-level or nested.
const (
	pathComponents      = ".//bskArticle"
	pathComponentPrices = ".//bskArticle/itemPrice[@type='sale'][@pd='1']/@value"
	pathFinalArtNr      = "./artNr[@type='final']"
	pathShortText       = "./description[@type='short']/text[@lang='de']"
	pathFeatureText     = "./description[@type='features']/text[@lang='de']"
	pathLongText        = "./description[@type='long']/text[@lang='de']"
	pathSalePrice       = "./itemPrice[@type='sale'][@pd='1']/@value"
	pathSaleCurrency    = "./itemPrice[@type='sale'][@pd='1']/@currency"
)

// subLineItem is a nested component before it is rendered into text.
type subLineItem struct {
	name        string
	description string
	quantity    int
	netAmount   float64
}

// components reads every nested article below article, at any depth.
func (g *engine) components(article *etree.Element) []*subLineItem {
	nodes := g.eval.Get(pathComponents, article)
	items := make([]*subLineItem, 0, len(nodes))
	for _, node := range nodes {
		items = append(items, &subLineItem{
			name: g.eval.StringOr(pathShortText, node.Element) + " | " +
				g.eval.StringOr(pathFinalArtNr, node.Element),
			description: g.eval.StringOr(pathFeatureText, node.Element),
			quantity:    1,
			netAmount:   g.eval.Number(pathSalePrice, node.Element),
		})
	}
	return items
}

// createSubItems renders the components of article as "Bestehend aus"
// text items, headed by parentLabel. Articles without components yield
// nothing.
func (g *engine) createSubItems(article *etree.Element, parentLabel string) []*types.LineItem {
	components := aggregateDuplicates(g.components(article))

	lines := make([]string, 0, len(components)+1)
	lines = append(lines, parentLabel)
	for _, c := range components {
		lines = append(lines, g.renderComponent(c))
	}

	items := splitTextBlock(lines)
	if len(items) > 1 {
		g.logger.Debug("Split component list",
			zap.Int("components", len(components)),
			zap.Int("chunks", len(items)))
	}
	return items
}

func (g *engine) renderComponent(c *subLineItem) string {
	if c.netAmount == 0 {
		return fmt.Sprintf("%dx %s", c.quantity, c.name)
	}
	line := fmt.Sprintf("%dx %s | je %s EUR", c.quantity, c.name, fixed2(c.netAmount*g.multiplier))
	if g.includeDescription {
		line += "\n" + c.description + "\n"
	}
	return line
}

// splitTextBlock turns rendered lines into text items of at most
// maxTextLength characters each. A block at or above the budget is cut
// into ceil(length/budget) groups of equal line count.
func splitTextBlock(lines []string) []*types.LineItem {
	joined := strings.Join(lines, "\n")
	length := utf8.RuneCountInString(joined)

	if length >= maxTextLength {
		divisor := ceilDiv(length, maxTextLength)
		step := ceilDiv(len(lines), divisor)

		var items []*types.LineItem
		for i := 0; i < len(lines); i += step {
			title := titleComposition
			if i > 0 {
				title = titleCompositionContinued
			}
			end := min(i+step, len(lines))
			items = append(items, types.NewTextItem(title, strings.TrimSpace(strings.Join(lines[i:end], "\n"))))
		}
		return items
	}

	if len(lines) > 1 {
		return []*types.LineItem{types.NewTextItem(titleComposition, strings.TrimSpace(joined))}
	}
	return nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
