// Package numeric provides the exact arithmetic used by every calculator:
// a fixed 10⁻⁶ scaled integer for inputs and outputs, and a big.Rat backed
// rational for everything in between.
package numeric

import (
	"math/big"
	"strings"
)

// Rational is an immutable exact fraction. The zero value is 0.
//
// Every operation allocates a fresh big.Rat, so a Rational can be shared
// across goroutines without copying.
type Rational struct {
	r *big.Rat
}

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

// NewRational builds num/den in lowest terms. A zero denominator is replaced by 1.
func NewRational(num, den int64) Rational {
	if den == 0 {
		den = 1
	}
	return Rational{r: big.NewRat(num, den)}
}

// FromInt returns the integer n as a Rational.
func FromInt(n int64) Rational {
	return Rational{r: new(big.Rat).SetInt64(n)}
}

// FromBig builds num/den from big integers. A nil or zero denominator is replaced by 1.
func FromBig(num, den *big.Int) Rational {
	if num == nil {
		return Rational{}
	}
	if den == nil || den.Sign() == 0 {
		den = bigOne
	}
	return Rational{r: new(big.Rat).SetFrac(num, den)}
}

// FromRat copies r into a Rational.
func FromRat(r *big.Rat) Rational {
	if r == nil {
		return Rational{}
	}
	return Rational{r: new(big.Rat).Set(r)}
}

// MustParse reads an exact decimal or fraction literal ("0.0254", "254/10000").
// It panics on malformed input and is intended for package-level constants.
func MustParse(s string) Rational {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		panic("numeric: invalid rational literal " + s)
	}
	return Rational{r: r}
}

func (x Rational) rat() *big.Rat {
	if x.r == nil {
		return new(big.Rat)
	}
	return x.r
}

// Rat returns a copy of the underlying big.Rat.
func (x Rational) Rat() *big.Rat {
	return new(big.Rat).Set(x.rat())
}

// Num returns a copy of the numerator; the sign lives here.
func (x Rational) Num() *big.Int {
	return new(big.Int).Set(x.rat().Num())
}

// Denom returns a copy of the (always positive) denominator.
func (x Rational) Denom() *big.Int {
	return new(big.Int).Set(x.rat().Denom())
}

// Add returns x + y.
func (x Rational) Add(y Rational) Rational {
	return Rational{r: new(big.Rat).Add(x.rat(), y.rat())}
}

// Sub returns x - y.
func (x Rational) Sub(y Rational) Rational {
	return Rational{r: new(big.Rat).Sub(x.rat(), y.rat())}
}

// Mul returns x * y.
func (x Rational) Mul(y Rational) Rational {
	return Rational{r: new(big.Rat).Mul(x.rat(), y.rat())}
}

// Div returns x / y, or zero when y is zero. Callers reject zero divisors
// during validation; the engine itself never fails.
func (x Rational) Div(y Rational) Rational {
	if y.IsZero() {
		return Rational{}
	}
	return Rational{r: new(big.Rat).Quo(x.rat(), y.rat())}
}

// Neg returns -x.
func (x Rational) Neg() Rational {
	return Rational{r: new(big.Rat).Neg(x.rat())}
}

// Cmp compares x and y by cross-multiplication: -1, 0 or +1.
func (x Rational) Cmp(y Rational) int {
	return x.rat().Cmp(y.rat())
}

// Equal reports whether x == y exactly.
func (x Rational) Equal(y Rational) bool {
	return x.Cmp(y) == 0
}

// Sign returns -1, 0 or +1.
func (x Rational) Sign() int {
	return x.rat().Sign()
}

// IsZero reports whether x == 0.
func (x Rational) IsZero() bool {
	return x.Sign() == 0
}

// IsInt reports whether the denominator is 1.
func (x Rational) IsInt() bool {
	return x.rat().IsInt()
}

// Max returns the larger of x and y.
func (x Rational) Max(y Rational) Rational {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

// Ceil returns the smallest integer not less than x, computed on the exact
// fraction so an integral ratio is never bumped to the next integer.
func (x Rational) Ceil() Rational {
	r := x.rat()
	if r.IsInt() {
		return Rational{r: new(big.Rat).Set(r)}
	}
	q, m := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	// DivMod floors for positive denominators, so a remainder means round up.
	if m.Sign() != 0 {
		q.Add(q, bigOne)
	}
	return Rational{r: new(big.Rat).SetInt(q)}
}

// ToScaled quantizes x to the 10⁻⁶ scale, truncating toward zero.
func (x Rational) ToScaled() Scaled {
	scaled := new(big.Int).Mul(x.rat().Num(), scaleFactor)
	// Quo truncates toward zero, unlike Div.
	scaled.Quo(scaled, x.rat().Denom())
	return Scaled{units: scaled}
}

// ToDecimalString renders x with the given number of fractional digits,
// truncating toward zero. When trim is set, trailing zeros and a dangling
// decimal point are removed.
func (x Rational) ToDecimalString(decimals int, trim bool) string {
	if decimals < 0 {
		decimals = 0
	}
	pow10 := new(big.Int).Exp(bigTen, big.NewInt(int64(decimals)), nil)
	i := new(big.Int).Mul(x.rat().Num(), pow10)
	i.Quo(i, x.rat().Denom())

	s := i.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if decimals > 0 {
		if len(s) <= decimals {
			s = strings.Repeat("0", decimals-len(s)+1) + s
		}
		dot := len(s) - decimals
		s = s[:dot] + "." + s[dot:]
		if trim {
			s = strings.TrimRight(s, "0")
			s = strings.TrimSuffix(s, ".")
		}
	}
	if neg && strings.Trim(s, "0.") != "" {
		s = "-" + s
	}
	return s
}

// String renders x as an exact fraction ("44/27") or integer ("22").
func (x Rational) String() string {
	return x.rat().RatString()
}
