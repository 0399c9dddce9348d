// Package display renders exact scaled values as strings. Rounding here is
// presentation only; callers keep the exact value for further arithmetic.
package display

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/coachpo/materialcalc/internal/numeric"
)

// Options controls how a value is presented.
type Options struct {
	// Round enables half-up rounding to Decimals; otherwise the exact value is
	// shown with trailing zeros trimmed.
	Round    bool
	Decimals int
	// Group inserts thousands separators into the integral part.
	Group bool
}

// DefaultOptions rounds to two decimals with grouping.
func DefaultOptions() Options {
	return Options{Round: true, Decimals: 2, Group: true}
}

var allowedDecimals = []int{0, 2, 4, 6}

// SnapDecimals maps d onto the nearest allowed precision at or above it.
func SnapDecimals(d int) int {
	for _, allowed := range allowedDecimals {
		if d <= allowed {
			return allowed
		}
	}
	return numeric.Scale
}

// Format renders s according to opts.
func Format(s numeric.Scaled, opts Options) string {
	if !opts.Round {
		return group(s.String(), opts.Group)
	}

	decimals := SnapDecimals(opts.Decimals)
	abs := new(big.Int).Abs(s.Units())
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(numeric.Scale-decimals)), nil)
	half := new(big.Int).Rsh(unit, 1)

	rounded := new(big.Int).Add(abs, half)
	rounded.Quo(rounded, unit)

	if rounded.Sign() == 0 && abs.Sign() != 0 {
		smallest := smallestIncrement(decimals)
		if s.Sign() < 0 {
			return "> -" + smallest
		}
		return "< " + smallest
	}

	out := fixed(rounded, decimals)
	if s.Sign() < 0 && rounded.Sign() != 0 {
		out = "-" + out
	}
	return group(out, opts.Group)
}

// FormatRational quantizes r to the 10⁻⁶ scale and formats it.
func FormatRational(r numeric.Rational, opts Options) string {
	return Format(r.ToScaled(), opts)
}

func smallestIncrement(decimals int) string {
	if decimals == 0 {
		return "1"
	}
	return "0." + strings.Repeat("0", decimals-1) + "1"
}

// fixed renders a non-negative integer count of 10^-decimals units.
func fixed(v *big.Int, decimals int) string {
	digits := v.String()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	dot := len(digits) - decimals
	return digits[:dot] + "." + digits[dot:]
}

func group(s string, enabled bool) string {
	if !enabled {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	whole, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return s
	}
	out := humanize.BigComma(whole)
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
