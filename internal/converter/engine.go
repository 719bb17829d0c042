package converter

import (
	"math"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// engine carries everything one document's transformation needs. It is
// created per document and never shared, so concurrent conversions cannot
// see each other's multiplier or evaluator.
type engine struct {
	eval               *Evaluator
	multiplier         float64
	includeDescription bool
	logger             *zap.Logger
}

func newEngine(doc *etree.Document, opts Options) *engine {
	return &engine{
		eval:               NewEvaluator(doc),
		multiplier:         normalizeMultiplier(opts.Multiplier),
		includeDescription: opts.IncludeDescription,
		logger:             opts.logger(),
	}
}

func normalizeMultiplier(m float64) float64 {
	if math.IsNaN(m) {
		return 1
	}
	return m
}

// fixed2 renders v money-rounded with exactly two decimals.
func fixed2(v float64) string {
	return strconv.FormatFloat(Money(v), 'f', 2, 64)
}

// formatGerman renders v with two decimals, "." grouping and "," as the
// decimal separator.
func formatGerman(v float64) string {
	return message.NewPrinter(language.German).Sprintf("%.2f", v)
}
