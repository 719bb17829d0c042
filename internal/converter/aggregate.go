package converter

import (
	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"go.uber.org/zap"
)

// aggregateDuplicates merges components with equal name and price into the
// first occurrence, counting them in its quantity.
func aggregateDuplicates(items []*subLineItem) []*subLineItem {
	var merged []*subLineItem
	for _, curr := range items {
		if existing := findComponent(merged, curr); existing != nil {
			existing.quantity++
			continue
		}
		merged = append(merged, curr)
	}
	return merged
}

func findComponent(items []*subLineItem, curr *subLineItem) *subLineItem {
	for _, item := range items {
		if item.name == curr.name && item.netAmount == curr.netAmount {
			return item
		}
	}
	return nil
}

// aggregateDuplicateLists flattens the article groups into line items.
//
// With grouping enabled a group is merged into an earlier one when the
// lead items share name and unit price and their component texts are
// identical (or both have none). Merging bumps the earlier lead's quantity
// and discards the later group's texts. Without grouping every group is
// kept as is.
func (g *engine) aggregateDuplicateLists(groups []lineGroup, groupLineItems bool) []*types.LineItem {
	if !groupLineItems {
		return flatten(groups)
	}

	var merged []lineGroup
	for _, curr := range groups {
		if lead := findGroupLead(merged, curr); lead != nil {
			lead.Quantity++
			g.logger.Debug("Merged duplicate line item",
				zap.String("name", lead.Name),
				zap.Int("quantity", lead.Quantity))
			continue
		}
		merged = append(merged, curr)
	}
	return flatten(merged)
}

func findGroupLead(groups []lineGroup, curr lineGroup) *types.LineItem {
	for _, group := range groups {
		if group.lead.Name == curr.lead.Name &&
			group.lead.UnitPrice.NetAmount == curr.lead.UnitPrice.NetAmount &&
			sameTexts(group.texts, curr.texts) {
			return group.lead
		}
	}
	return nil
}

func sameTexts(a, b []*types.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description {
			return false
		}
	}
	return true
}

func flatten(groups []lineGroup) []*types.LineItem {
	var items []*types.LineItem
	for _, group := range groups {
		items = append(items, group.lead)
		items = append(items, group.texts...)
	}
	return items
}
