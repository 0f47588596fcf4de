// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the currency symbol used when none is configured.
const DefaultCurrency = "₪"

var printer = message.NewPrinter(language.English)

// FormatMoney formats an amount with exactly two decimals, thousands
// grouping and the symbol in front. The sign follows the symbol.
// e.g., ("₪", 1234.5) -> "₪1,234.50", ("₪", -50) -> "₪-50.00"
func FormatMoney(symbol string, v float64) string {
	return symbol + FormatAmount(v)
}

// FormatAmount formats an amount with exactly two decimals and grouping.
func FormatAmount(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsZero() {
		d = decimal.Zero
	}
	return printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// FormatPlain formats an amount with two decimals and no grouping, for
// machine-readable output.
func FormatPlain(v float64) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "NaN", true
	case math.IsInf(v, 1):
		return "Inf", true
	case math.IsInf(v, -1):
		return "-Inf", true
	}
	return "", false
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 value with one decimal.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatShare formats a 0-1 fraction as a percentage string.
func FormatShare(f float64) string {
	return FormatPercent(f * 100)
}

// FormatMonths formats a project duration.
func FormatMonths(n int) string {
	if n == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", n)
}

// FormatSignedMoney formats an amount with an explicit "+" for positive
// values, for deltas.
func FormatSignedMoney(symbol string, v float64) string {
	s := FormatMoney(symbol, v)
	if math.IsInf(v, 1) || (!math.IsInf(v, -1) && !math.IsNaN(v) && decimal.NewFromFloat(v).Round(2).IsPositive()) {
		return "+" + s
	}
	return s
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
