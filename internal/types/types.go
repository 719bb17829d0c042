// =============================================================================
// OBX Importer - Shared Types
// =============================================================================
//
// This package contains the quotation payload types shared by the converter,
// the spreadsheet export and the CLI. The JSON shape matches the invoicing
// API's "create quotation" request body.
//
// LINE ITEM KINDS:
//   - text   : narrative-only line (sub-item block, room banner, subtotal)
//   - custom : priced, quantity-bearing line (article or shipping charge)
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// LINE ITEM TYPES
// =============================================================================

// LineKind discriminates the line item variants.
type LineKind string

const (
	// KindText is a line without price or quantity.
	KindText LineKind = "text"

	// KindCustom is a priced line with quantity and unit.
	KindCustom LineKind = "custom"
)

// Unit names accepted by the invoicing API.
const (
	UnitPiece       = "Stk."
	UnitLumpSum     = "Psch"
	DefaultTaxRate  = 19
	DefaultCurrency = "EUR"
)

// UnitPrice is the price block of a custom line item.
type UnitPrice struct {
	Currency          string  `json:"currency"`
	NetAmount         float64 `json:"netAmount"`
	TaxRatePercentage float64 `json:"taxRatePercentage"`
}

// LineItem is a single quotation line.
//
// Kind selects which fields are meaningful: text items only carry Name and
// Description, custom items carry all fields. Use NewTextItem and
// NewCustomItem instead of building the struct by hand.
type LineItem struct {
	Kind        LineKind
	Name        string
	Description string
	Quantity    int
	UnitName    string
	UnitPrice   UnitPrice
}

// NewTextItem creates a narrative line item.
func NewTextItem(name, description string) *LineItem {
	return &LineItem{Kind: KindText, Name: name, Description: description}
}

// NewCustomItem creates a priced line item with quantity 1 and the default
// tax rate.
func NewCustomItem(name, description, unitName, currency string, netAmount float64) *LineItem {
	return &LineItem{
		Kind:        KindCustom,
		Name:        name,
		Description: description,
		Quantity:    1,
		UnitName:    unitName,
		UnitPrice: UnitPrice{
			Currency:          currency,
			NetAmount:         netAmount,
			TaxRatePercentage: DefaultTaxRate,
		},
	}
}

// IsCustom reports whether the item is priced.
func (li *LineItem) IsCustom() bool {
	return li.Kind == KindCustom
}

// NetTotal returns unit price times quantity for custom items and 0 for text.
func (li *LineItem) NetTotal() float64 {
	if !li.IsCustom() {
		return 0
	}
	return li.UnitPrice.NetAmount * float64(li.Quantity)
}

type textItemJSON struct {
	Type        LineKind `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
}

type customItemJSON struct {
	Type        LineKind  `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitName    string    `json:"unitName"`
	UnitPrice   UnitPrice `json:"unitPrice"`
}

// MarshalJSON encodes the item in the shape of its kind.
func (li LineItem) MarshalJSON() ([]byte, error) {
	switch li.Kind {
	case KindText:
		return json.Marshal(textItemJSON{Type: li.Kind, Name: li.Name, Description: li.Description})
	case KindCustom:
		return json.Marshal(customItemJSON{
			Type:        li.Kind,
			Name:        li.Name,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitName:    li.UnitName,
			UnitPrice:   li.UnitPrice,
		})
	default:
		return nil, fmt.Errorf("unknown line item kind %q", li.Kind)
	}
}

// UnmarshalJSON decodes either item shape based on its "type" field.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw customItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case KindText:
		*li = LineItem{Kind: KindText, Name: raw.Name, Description: raw.Description}
	case KindCustom:
		*li = LineItem{
			Kind:        KindCustom,
			Name:        raw.Name,
			Description: raw.Description,
			Quantity:    raw.Quantity,
			UnitName:    raw.UnitName,
			UnitPrice:   raw.UnitPrice,
		}
	default:
		return fmt.Errorf("unknown line item type %q", raw.Type)
	}
	return nil
}

// =============================================================================
// QUOTATION
// =============================================================================

// Address identifies the recipient. Either ContactID references an existing
// contact, or Name/CountryCode (plus optional postal fields) describe an
// ad-hoc recipient.
type Address struct {
	ContactID   string `json:"contactId,omitempty" yaml:"contact_id"`
	Name        string `json:"name,omitempty" yaml:"name"`
	Supplement  string `json:"supplement,omitempty" yaml:"supplement"`
	Street      string `json:"street,omitempty" yaml:"street"`
	City        string `json:"city,omitempty" yaml:"city"`
	Zip         string `json:"zip,omitempty" yaml:"zip"`
	CountryCode string `json:"countryCode,omitempty" yaml:"country_code"`
}

// IsZero reports whether no field of the address is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// DefaultAddress is used when the caller supplies no recipient.
func DefaultAddress() Address {
	return Address{Name: "Testkunde", CountryCode: "DE"}
}

// TotalPrice carries the quotation currency.
type TotalPrice struct {
	Currency string `json:"currency"`
}

// TaxConditions selects net, gross or vat-free pricing.
type TaxConditions struct {
	TaxType string `json:"taxType"`
}

// Quotation is the payload for the invoicing API.
type Quotation struct {
	VoucherDate    string        `json:"voucherDate"`
	ExpirationDate string        `json:"expirationDate"`
	Address        Address       `json:"address"`
	LineItems      []*LineItem   `json:"lineItems"`
	TotalPrice     TotalPrice    `json:"totalPrice"`
	TaxConditions  TaxConditions `json:"taxConditions"`
}

// UnitCount returns the number of priced units across all custom items.
func (q *Quotation) UnitCount() int {
	count := 0
	for _, item := range q.LineItems {
		if item.IsCustom() {
			count += item.Quantity
		}
	}
	return count
}

// CustomItems returns the priced line items in order.
func (q *Quotation) CustomItems() []*LineItem {
	var items []*LineItem
	for _, item := range q.LineItems {
		if item.IsCustom() {
			items = append(items, item)
		}
	}
	return items
}
