// Package format renders amounts and rates for people to read.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/mathutil"
)

// Currency returns a currency string with a euro sign and thousands separators (e.g., "-€1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount), 2)
	if amount < 0 && formatted != "0.00" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// WholeCurrency rounds to whole units (e.g., "€314,192").
func WholeCurrency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount), 0)
	if amount < 0 && formatted != "0" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	sign := ""
	formatted := formatPositiveCurrency(math.Abs(amount), 2)
	if amount < 0 && formatted != "0.00" {
		sign = "-"
	}
	return sign + formatted
}

// Percentage renders a fraction as a percentage with two decimals (0.0375 -> "3.75%").
func Percentage(fraction float64) string {
	return fmt.Sprintf("%.2f%%", mathutil.ToPercentage(fraction))
}

func formatPositiveCurrency(value float64, decimals int) string {
	formatted := fmt.Sprintf("%.*f", decimals, value)
	intPart, decPart, _ := strings.Cut(formatted, ".")

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if decimals == 0 {
		return intPart
	}
	return intPart + "." + decPart
}
