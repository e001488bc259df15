// Package numeric holds the conversions applied to exact decimals when they
// leave the process: a lossy double view for reports and a lossless packed
// form for checkpoints.
package numeric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrMalformedPacked = errors.New("malformed packed decimal")

// ToDouble converts d to the nearest float64. Precision beyond what a double
// can hold is dropped.
func ToDouble(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Pack encodes d as "<coefficient>e<exponent>". The coefficient and exponent
// are kept verbatim, so Unpack restores the same scale as well as the value.
func Pack(d decimal.Decimal) string {
	return d.Coefficient().String() + "e" + strconv.FormatInt(int64(d.Exponent()), 10)
}

// Unpack is the inverse of Pack.
func Unpack(s string) (decimal.Decimal, error) {
	coef, exp, ok := strings.Cut(s, "e")
	if !ok || coef == "" || exp == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrMalformedPacked, s)
	}
	c, err := decimal.NewFromString(coef)
	if err != nil || !c.IsInteger() || strings.Contains(coef, ".") {
		return decimal.Decimal{}, fmt.Errorf("%w: coefficient %q", ErrMalformedPacked, coef)
	}
	e, err := strconv.ParseInt(exp, 10, 32)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: exponent %q", ErrMalformedPacked, exp)
	}
	return decimal.NewFromBigInt(c.BigInt(), int32(e)), nil
}

// Round rounds d to the given number of fractional digits, half away from zero.
func Round(d decimal.Decimal, decimals int) decimal.Decimal {
	return d.Round(int32(decimals))
}
