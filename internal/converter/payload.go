// =============================================================================
// OBX Importer - Quotation Assembler
// =============================================================================
//
// This module turns one or more parsed OBX documents into a quotation
// payload for the invoicing API.
//
// MODES:
//   Single document: the aggregated line items followed by one shipping line.
//   Multiple rooms:  per room a banner, the room's line items and a net
//                    subtotal; then one shipping line for all rooms combined.
//
// Every call builds its own engine. Nothing is shared between calls, so
// payloads for different files can be built concurrently.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dateLayout is ISO 8601 in UTC with milliseconds.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// expirationDays is how long a quotation stays valid.
const expirationDays = 14

// ErrNoDocuments is returned when a multi-room payload is requested without
// any room.
var ErrNoDocuments = errors.New("no documents to convert")

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls a single payload build.
type Options struct {
	// Multiplier scales every price. NaN is treated as 1.
	Multiplier float64

	// IncludeDescription selects the long display mode, where component
	// lists follow each article as separate text items. When false the
	// first component block is folded into the article's description.
	IncludeDescription bool

	// GroupLineItems merges identical articles into one line with a higher
	// quantity.
	GroupLineItems bool

	// Address is the recipient. Nil selects DefaultAddress.
	Address *types.Address

	// Now returns the current time. Nil selects time.Now.
	Now func() time.Time

	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns long descriptions, grouping and a multiplier of 1.
func DefaultOptions() Options {
	return Options{
		Multiplier:         1,
		IncludeDescription: true,
		GroupLineItems:     true,
	}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) address() types.Address {
	if o.Address == nil {
		return types.DefaultAddress()
	}
	return *o.Address
}

// RoomDocument is one named document of a multi-room quotation.
type RoomDocument struct {
	Name     string
	Document *etree.Document
}

// =============================================================================
// PAYLOAD
// =============================================================================

// CreateSinglePayload builds the quotation for a single document.
//
// PARAMETERS:
//   - doc: The parsed OBX document.
//   - opts: Multiplier, display mode, grouping, recipient.
//
// RETURNS:
//   - The quotation: all article line items followed by the shipping line.
func CreateSinglePayload(doc *etree.Document, opts Options) *types.Quotation {
	g := newEngine(doc, opts)

	items := g.processDocument(opts.GroupLineItems)
	g.logger.Debug("Processed document",
		zap.Int("line_items", len(items)))

	items = append(items, ShippingCosts(g.volumes(), g.weights()))
	return newQuotation(items, opts)
}

// CreatePayload builds one quotation covering several rooms, in the order
// given.
//
// PARAMETERS:
//   - rooms: The named documents; each name labels its banner and subtotal.
//   - opts: Multiplier, display mode, grouping, recipient.
//
// RETURNS:
//   - The quotation with banner, items and subtotal per room and one
//     shipping line computed from all rooms' volumes and weights.
//   - ErrNoDocuments if rooms is empty.
func CreatePayload(rooms []RoomDocument, opts Options) (*types.Quotation, error) {
	if len(rooms) == 0 {
		return nil, ErrNoDocuments
	}

	var (
		items   []*types.LineItem
		volumes []float64
		weights []float64
	)

	for _, room := range rooms {
		g := newEngine(room.Document, opts)

		roomItems := g.processDocument(opts.GroupLineItems)
		total := roomTotal(roomItems)

		items = append(items, types.NewTextItem(fmt.Sprintf("Es folgen die Artikel für %s", room.Name), ""))
		items = append(items, roomItems...)
		items = append(items, types.NewTextItem(
			fmt.Sprintf("Nettosumme %s: %s EUR", room.Name, formatGerman(total.InexactFloat64())), ""))

		volumes = append(volumes, g.volumes()...)
		weights = append(weights, g.weights()...)

		g.logger.Debug("Processed room",
			zap.String("room", room.Name),
			zap.Int("line_items", len(roomItems)),
			zap.String("net_total", total.StringFixed(2)))
	}

	items = append(items, ShippingCosts(volumes, weights))
	return newQuotation(items, opts), nil
}

// roomTotal sums netAmount × quantity over the custom items.
func roomTotal(items []*types.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if !item.IsCustom() {
			continue
		}
		total = total.Add(decimal.NewFromFloat(item.UnitPrice.NetAmount).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func newQuotation(items []*types.LineItem, opts Options) *types.Quotation {
	now := opts.now()
	expiration := time.Date(now.Year(), now.Month(), now.Day()+expirationDays, 0, 0, 0, 0, now.Location())

	return &types.Quotation{
		VoucherDate:    now.UTC().Format(dateLayout),
		ExpirationDate: expiration.UTC().Format(dateLayout),
		Address:        opts.address(),
		LineItems:      items,
		TotalPrice:     types.TotalPrice{Currency: types.DefaultCurrency},
		TaxConditions:  types.TaxConditions{TaxType: "net"},
	}
}
