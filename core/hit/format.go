// core/hit/format.go
package hit

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatEValue renders an e-value compactly: plain decimal for moderate
// magnitudes, otherwise mantissa/exponent form ("1e-300", "2.5e-180").
// It never rounds.
func FormatEValue(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	digits := d.Coefficient().String()
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	exp := int(d.Exponent())
	for len(digits) > 1 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
		exp++
	}
	sciExp := exp + len(digits) - 1
	if sciExp >= -3 && sciExp <= 5 {
		return d.String()
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte(digits[0])
	if len(digits) > 1 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	b.WriteString(strconv.Itoa(sciExp))
	return b.String()
}
