package gnucash

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount converts GnuCash's exact-rational amount encoding, e.g.
// "-1250/100", into a decimal. Power-of-ten denominators convert
// exactly; anything else falls back to decimal division.
func parseAmount(s string) (decimal.Decimal, error) {
	numStr, denStr, found := strings.Cut(s, "/")
	if !found {
		return decimal.Zero, fmt.Errorf("invalid amount %q: missing denominator", s)
	}
	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	den, err := strconv.ParseInt(denStr, 10, 64)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if den < 1 {
		return decimal.Zero, fmt.Errorf("invalid amount %q: denominator must be positive", s)
	}
	if places, ok := pow10Places(den); ok {
		return decimal.New(num, -places), nil
	}
	return decimal.New(num, 0).Div(decimal.New(den, 0)), nil
}

// pow10Places reports the n for which v == 10^n.
func pow10Places(v int64) (int32, bool) {
	if v < 1 {
		return 0, false
	}
	var n int32
	for v > 1 {
		if v%10 != 0 {
			return 0, false
		}
		v /= 10
		n++
	}
	return n, true
}
