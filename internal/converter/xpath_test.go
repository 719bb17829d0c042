package converter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{100, 100},
		{1.005, 1.01},
		{12.344, 12.34},
		{12.346, 12.35},
		{0.125, 0.13},
		{-1.5, -1.5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "Money(%v)", tt.in)
	}

	assert.True(t, math.IsNaN(Money(math.NaN())))
}

func TestMoney_Idempotent(t *testing.T) {
	for i := 0; i < 20000; i++ {
		x := float64(i) * 0.0137
		once := Money(x)
		assert.Equal(t, once, Money(once), "x=%v", x)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"12,5", 12.5},
		{" 7 ", 7},
		{"12.5 kg", 12.5},
		{".5", 0.5},
		{"-3", -3},
		{"1e2", 100},
		{"1,234.5", 1.234},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseNumber(tt.in), "parseNumber(%q)", tt.in)
	}

	for _, in := range []string{"", "abc", "kg 12", ","} {
		assert.True(t, math.IsNaN(parseNumber(in)), "parseNumber(%q)", in)
	}
}

func TestSplitAttrStep(t *testing.T) {
	tests := []struct {
		path     string
		wantPath string
		wantAttr string
	}{
		{"./itemPrice[@type='sale'][@pd='1']/@value", "./itemPrice[@type='sale'][@pd='1']", "value"},
		{".//packInfo[@key='volume']/@value", ".//packInfo[@key='volume']", "value"},
		{"./itemPrice[@type='sale']", "./itemPrice[@type='sale']", ""},
		{"./a/b", "./a/b", ""},
	}

	for _, tt := range tests {
		path, attr := splitAttrStep(tt.path)
		assert.Equal(t, tt.wantPath, path)
		assert.Equal(t, tt.wantAttr, attr)
	}
}

func TestEvaluator_DocumentOrder(t *testing.T) {
	doc := parseDoc(t, `<r><a><b id="1"><b id="2"/></b></a><b id="3"/><b/></r>`)
	e := NewEvaluator(doc)

	nodes := e.Get(".//b", doc.Root())
	require.Len(t, nodes, 4)
	var ids []string
	for _, n := range nodes {
		ids = append(ids, n.Element.SelectAttrValue("id", "-"))
	}
	assert.Equal(t, []string{"1", "2", "3", "-"}, ids)

	// Elements without the attribute are skipped.
	attrs := e.Get(".//b/@id", doc.Root())
	require.Len(t, attrs, 3)
	assert.Equal(t, "1", attrs[0].TextContent())
	assert.Equal(t, "2", attrs[1].TextContent())
	assert.Equal(t, "3", attrs[2].TextContent())
}

func TestEvaluator_AbsolutePath(t *testing.T) {
	doc := parseDoc(t, obx(articles(chair, chair)))
	e := NewEvaluator(doc)

	items := e.Get(pathItems, e.Document())
	require.Len(t, items, 1)
	assert.Equal(t, "items", items[0].Element.Tag)

	// Absolute paths ignore the context element.
	assert.Len(t, e.Get(pathItems, items[0].Element), 1)
}

func TestEvaluator_String(t *testing.T) {
	doc := parseDoc(t, "<r><t>\tHallo\tWelt \n</t><n>a<i>b</i>c</n></r>")
	e := NewEvaluator(doc)

	v, ok := e.String("./t", doc.Root())
	assert.True(t, ok)
	assert.Equal(t, "HalloWelt", v)

	v, ok = e.String("./n", doc.Root())
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	v, ok = e.String("./missing", doc.Root())
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Equal(t, "", e.StringOr("./missing", doc.Root()))
}

func TestEvaluator_Number(t *testing.T) {
	doc := parseDoc(t, `<r><p a="12,50"/><p b="1.005"/><q x="n/a"/></r>`)
	e := NewEvaluator(doc)
	root := doc.Root()

	assert.Equal(t, 12.5, e.Number("./p/@a", root))
	assert.Equal(t, 1.01, e.Number("./p/@b", root))
	assert.Equal(t, 0.0, e.Number("./q/@x", root))
	assert.Equal(t, 0.0, e.Number("./missing/@value", root))
}

func TestEvaluator_NilDocument(t *testing.T) {
	e := NewEvaluator(nil)
	assert.Nil(t, e.Document())
	assert.Empty(t, e.Get(".//bskArticle", e.Document()))
	assert.Empty(t, e.Prefixes())
	assert.Equal(t, 0.0, e.Number("./x/@y", nil))
}

func TestEvaluator_InvalidPath(t *testing.T) {
	doc := parseDoc(t, `<r/>`)
	e := NewEvaluator(doc)
	assert.Empty(t, e.Get("./a[", doc.Root()))
}
