package converter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"
)

// article describes a bskArticle for test documents. Empty fields are
// left out of the generated XML.
type article struct {
	nr       string
	short    string
	features string
	long     string
	price    string
	currency string
	volume   string
	weight   string
	children []article
}

func (a article) xml() string {
	var sb strings.Builder
	sb.WriteString("<bskArticle>")
	if a.nr != "" {
		fmt.Fprintf(&sb, `<artNr type="final">%s</artNr>`, a.nr)
	}
	if a.short != "" {
		fmt.Fprintf(&sb, `<description type="short"><text lang="de">%s</text></description>`, a.short)
	}
	if a.features != "" {
		fmt.Fprintf(&sb, `<description type="features"><text lang="de">%s</text></description>`, a.features)
	}
	if a.long != "" {
		fmt.Fprintf(&sb, `<description type="long"><text lang="de">%s</text></description>`, a.long)
	}
	if a.price != "" {
		currency := ""
		if a.currency != "" {
			currency = fmt.Sprintf(` currency="%s"`, a.currency)
		}
		fmt.Fprintf(&sb, `<itemPrice type="sale" pd="1" value="%s"%s/>`, a.price, currency)
		// Purchase prices must never be read.
		sb.WriteString(`<itemPrice type="purchase" pd="1" value="1"/>`)
	}
	if a.volume != "" {
		fmt.Fprintf(&sb, `<packInfo key="volume" value="%s"/>`, a.volume)
	}
	if a.weight != "" {
		fmt.Fprintf(&sb, `<packInfo key="netWeight" originalValue="%s"/>`, a.weight)
	}
	for _, child := range a.children {
		sb.WriteString(child.xml())
	}
	sb.WriteString("</bskArticle>")
	return sb.String()
}

func articles(list ...article) string {
	var sb strings.Builder
	for _, a := range list {
		sb.WriteString(a.xml())
	}
	return sb.String()
}

func position(text string, content string) string {
	return fmt.Sprintf(`<setArticle><description default="1"><text lang="de">%s</text></description>%s</setArticle>`, text, content)
}

func folder(label string, positions ...string) string {
	return fmt.Sprintf(`<bskFolder><label lang="de">%s</label>%s</bskFolder>`, label, strings.Join(positions, ""))
}

func obx(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><cutBuffer><items>` + items + `</items></cutBuffer>`
}

func parseDoc(t *testing.T, xml string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))
	return doc
}

// chair is a plain article without components.
var chair = article{nr: "A-1", short: "Stuhl", features: "Eiche geölt", price: "100.00", currency: "EUR"}
