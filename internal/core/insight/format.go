package insight

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// count renders a metric total with thousands separators
func count(v float64) string { return printer.Sprintf("%d", int64(math.Round(v))) }

// signedCount renders a delta with an explicit sign
func signedCount(v float64) string {
	n := int64(math.Round(v))
	if n > 0 {
		return "+" + printer.Sprintf("%d", n)
	}
	return printer.Sprintf("%d", n)
}

// pct renders a ratio as a signed percentage with one decimal
func pct(ratio float64) string { return fmt.Sprintf("%+.1f%%", ratio*100) }

// pts renders a percentage-point delta
func pts(v float64) string { return fmt.Sprintf("%+.1f pts", v) }

// rate renders a CTR ratio as a plain percentage
func rate(ratio float64) string { return fmt.Sprintf("%.1f%%", ratio*100) }

// pos renders an average position
func pos(v float64) string { return fmt.Sprintf("%.1f", v) }
