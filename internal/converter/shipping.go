package converter

import (
	"fmt"
	"math"
	"strings"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
)

const (
	shippingName = "Frachtkosten und Verbringung"

	// shippingRatePerCubicMeter is charged per started cubic meter.
	shippingRatePerCubicMeter = 140

	// shippingMinimum is the floor of the shipping charge.
	shippingMinimum = 200

	shippingDisclaimer = "Warenlieferungen erfolgen DDP (Delivered Duty Paid). " +
		"Die Anlieferung umfasst den Transport in den Aufstellungsraum bzw. " +
		"wenn dies nicht möglich ist, hinter die erste verschlossene Tür."
)

// Metadata paths for the shipping estimate, in priority order.
var (
	volumePaths = []string{
		".//packInfo[@key='volume']/@value",
		".//feature[@name='VOLUMEN']/@value",
		".//feature[@name='Volumen']/@value",
	}
	weightPaths = []string{
		".//packInfo[@key='netWeight']/@originalValue",
		".//feature[@name='GEWICHT']/@value",
		".//feature[@name='Gewicht']/@value",
	}
)

// ShippingCosts builds the freight line item from the volumes (m³) and
// weights (kg) collected across the quotation's documents. Zero and NaN
// readings count as missing data.
func ShippingCosts(volumes, weights []float64) *types.LineItem {
	volume := sumReadings(volumes)
	weight := sumReadings(weights)

	description := fmt.Sprintf("Volumen: %.2fm³\nGewicht: %.2fkg\n\n%s", volume, weight, shippingDisclaimer)
	price := math.Max(math.Ceil(volume)*shippingRatePerCubicMeter, shippingMinimum)

	return types.NewCustomItem(shippingName, description, types.UnitLumpSum, types.DefaultCurrency, price)
}

func sumReadings(values []float64) float64 {
	var sum float64
	for _, v := range values {
		if v == 0 || math.IsNaN(v) {
			continue
		}
		sum += v
	}
	return sum
}

// volumes reads the packing volume of every top-level article.
func (g *engine) volumes() []float64 {
	return g.readings(volumePaths)
}

// weights reads the net weight of every top-level article.
func (g *engine) weights() []float64 {
	return g.readings(weightPaths)
}

// readings returns, for each top-level article, the values of the first
// path in paths that yields a non-blank value.
func (g *engine) readings(paths []string) []float64 {
	var values []float64
	for _, ref := range g.eval.articles() {
		for _, path := range paths {
			found := false
			for _, node := range g.eval.Get(path, ref.node) {
				text := strings.TrimSpace(node.TextContent())
				if text == "" {
					continue
				}
				found = true
				values = append(values, parseNumber(text))
			}
			if found {
				break
			}
		}
	}
	return values
}
