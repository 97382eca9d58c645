package util

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney renders a monetary value for display. Mode "int" rounds to a
// whole amount; "float" keeps the given number of decimals. All amounts are
// grouped with thousands separators.
func FormatMoney(value float64, mode string, decimals int) string {
	if mode == "float" {
		if decimals < 0 {
			decimals = 0
		}
		s := fmt.Sprintf("%.*f", decimals, value)
		intPart, fracPart, found := strings.Cut(s, ".")
		if !found {
			return groupThousands(intPart)
		}
		return groupThousands(intPart) + "." + fracPart
	}
	return groupThousands(fmt.Sprintf("%d", int64(math.Round(value))))
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
