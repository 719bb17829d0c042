package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItem_MarshalJSON(t *testing.T) {
	t.Run("text item omits price fields", func(t *testing.T) {
		data, err := json.Marshal(NewTextItem("Es folgen die Artikel für EG", ""))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"text","name":"Es folgen die Artikel für EG"}`, string(data))
	})

	t.Run("custom item carries unit price", func(t *testing.T) {
		item := NewCustomItem("A1 | Stuhl", "Buche", UnitPiece, DefaultCurrency, 100)
		item.Quantity = 2

		data, err := json.Marshal(item)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "custom",
			"name": "A1 | Stuhl",
			"description": "Buche",
			"quantity": 2,
			"unitName": "Stk.",
			"unitPrice": {"currency": "EUR", "netAmount": 100, "taxRatePercentage": 19}
		}`, string(data))
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := json.Marshal(LineItem{Kind: "sub"})
		assert.Error(t, err)
	})
}

func TestLineItem_UnmarshalJSON(t *testing.T) {
	var items []*LineItem
	err := json.Unmarshal([]byte(`[
		{"type":"text","name":"Bestehend aus:","description":"1x A"},
		{"type":"custom","name":"A","description":"","quantity":3,"unitName":"Psch",
		 "unitPrice":{"currency":"EUR","netAmount":200,"taxRatePercentage":19}}
	]`), &items)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, KindText, items[0].Kind)
	assert.Equal(t, "1x A", items[0].Description)
	assert.Equal(t, KindCustom, items[1].Kind)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, 200.0, items[1].UnitPrice.NetAmount)
}

func TestQuotation_UnitCount(t *testing.T) {
	a := NewCustomItem("A", "", UnitPiece, DefaultCurrency, 10)
	a.Quantity = 3
	q := &Quotation{LineItems: []*LineItem{
		NewTextItem("banner", ""),
		a,
		NewCustomItem("B", "", UnitPiece, DefaultCurrency, 5),
	}}

	assert.Equal(t, 4, q.UnitCount())
	assert.Len(t, q.CustomItems(), 2)
	assert.Equal(t, 30.0, a.NetTotal())
	assert.Equal(t, 0.0, q.LineItems[0].NetTotal())
}

func TestAddress(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, DefaultAddress().IsZero())

	data, err := json.Marshal(Address{ContactID: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contactId":"abc"}`, string(data))
}
