package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Safe float64 to decimal conversion
func FloatToDecimal(val float64) decimal.Decimal {
	return decimal.NewFromFloat(val)
}

// Safe decimal to float64 conversion (may lose precision!)
func DecimalToFloat(val decimal.Decimal) float64 {
	f, _ := val.Float64()
	return f
}

// ParseDecimalInput accepts partially typed literals such as "1." or ".5".
func ParseDecimalInput(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return decimal.NewFromString(s)
}

// Format decimal with a fixed number of places
func DecimalToString(val decimal.Decimal, places int32) string {
	return val.StringFixed(places)
}
