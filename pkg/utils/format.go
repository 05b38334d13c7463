package utils

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for values that cannot be formatted.
const NotAvailable = "—"

const currencySymbol = "$"

// FormatMagnitude abbreviates market caps and volumes: 1.23T, 4.56B, 7.89M, 1.00K.
// Values below one thousand are truncated to an integer.
func FormatMagnitude(n float64) string {
	if !IsFinite(n) {
		return NotAvailable
	}
	if n < 0 {
		return "-" + FormatMagnitude(-n)
	}

	switch {
	case n >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case n >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return strconv.FormatFloat(math.Trunc(n), 'f', 0, 64)
	}
}

// FormatCurrency keeps significant digits for small prices and groups
// thousands for large ones.
func FormatCurrency(price float64) string {
	if !IsFinite(price) {
		return NotAvailable
	}
	if price < 0 {
		return "-" + FormatCurrency(-price)
	}

	switch {
	case price < 0.01:
		return currencySymbol + strconv.FormatFloat(price, 'f', 6, 64)
	case price < 1:
		return currencySymbol + strconv.FormatFloat(price, 'f', 4, 64)
	case price < 10:
		return currencySymbol + strconv.FormatFloat(price, 'f', 3, 64)
	case price < 1000:
		return currencySymbol + strconv.FormatFloat(price, 'f', 2, 64)
	default:
		p := message.NewPrinter(language.English)
		return currencySymbol + p.Sprintf("%.2f", price)
	}
}

// FormatPercent renders a signed 24h change, e.g. "+2.34%".
func FormatPercent(change float64) string {
	if !IsFinite(change) {
		return NotAvailable
	}
	change += 0 // normalizes negative zero
	if change >= 0 {
		return fmt.Sprintf("+%.2f%%", change)
	}
	return fmt.Sprintf("%.2f%%", change)
}

func FormatRate(rate float64) string {
	if !IsFinite(rate) {
		return NotAvailable
	}
	return strconv.FormatFloat(rate, 'f', 6, 64)
}
