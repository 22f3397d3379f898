package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as "R$ 1,234.56".
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart := fixed, ""
	if idx := strings.Index(fixed, "."); idx >= 0 {
		intPart, fracPart = fixed[:idx], fixed[idx:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return "R$ " + sign + b.String() + fracPart
}

// ParseMoney accepts both "150.50" and "150,50".
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return decimal.NewFromString(s)
}
