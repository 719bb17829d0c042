package xlsxexport

import (
	"path/filepath"
	"testing"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleQuotation() *types.Quotation {
	chair := types.NewCustomItem("A-1 | Stuhl", "Eiche", types.UnitPiece, "EUR", 100)
	chair.Quantity = 2

	return &types.Quotation{
		VoucherDate:    "2024-03-01T10:00:00.000Z",
		ExpirationDate: "2024-03-14T23:00:00.000Z",
		Address:        types.DefaultAddress(),
		LineItems: []*types.LineItem{
			chair,
			types.NewTextItem("Bestehend aus:", "1x Sitz"),
			types.NewCustomItem("Frachtkosten und Verbringung", "Volumen: 0.00m³", types.UnitLumpSum, "EUR", 200),
		},
		TotalPrice:    types.TotalPrice{Currency: "EUR"},
		TaxConditions: types.TaxConditions{TaxType: "net"},
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "angebot.xlsx")
	require.NoError(t, Write(sampleQuotation(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	get := func(axis string) string {
		v, err := f.GetCellValue(SheetName, axis, raw)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Angebot", get("A1"))
	assert.Equal(t, "2024-03-01T10:00:00.000Z", get("B2"))
	assert.Equal(t, "Testkunde", get("B3"))

	assert.Equal(t, "Pos.", get("A5"))
	assert.Equal(t, "Bezeichnung", get("C5"))
	assert.Equal(t, "Gesamt", get("H5"))

	// Priced article.
	assert.Equal(t, "1", get("A6"))
	assert.Equal(t, "custom", get("B6"))
	assert.Equal(t, "A-1 | Stuhl", get("C6"))
	assert.Equal(t, "2", get("E6"))
	assert.Equal(t, "Stk.", get("F6"))
	assert.Equal(t, "100", get("G6"))
	assert.Equal(t, "200", get("H6"))

	// Text item has no position or price.
	assert.Equal(t, "", get("A7"))
	assert.Equal(t, "text", get("B7"))
	assert.Equal(t, "Bestehend aus:", get("C7"))
	assert.Equal(t, "1x Sitz", get("D7"))
	assert.Equal(t, "", get("G7"))

	// Shipping.
	assert.Equal(t, "2", get("A8"))
	assert.Equal(t, "Psch", get("F8"))

	assert.Equal(t, "Nettosumme", get("G9"))
	assert.Equal(t, "400", get("H9"))
}

func TestWrite_ContactAddress(t *testing.T) {
	q := sampleQuotation()
	q.Address = types.Address{ContactID: "be9475f4-ef80-442b-8ab9-3ab8b1a2aeb9"}

	path := filepath.Join(t.TempDir(), "contact.xlsx")
	require.NoError(t, Write(q, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(SheetName, "B3")
	require.NoError(t, err)
	assert.Equal(t, "be9475f4-ef80-442b-8ab9-3ab8b1a2aeb9", v)
}

func TestWrite_InvalidPath(t *testing.T) {
	err := Write(sampleQuotation(), filepath.Join(t.TempDir(), "missing", "dir", "out.xlsx"))
	assert.Error(t, err)
}
