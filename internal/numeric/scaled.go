package numeric

import (
	"math/big"
)

// Scale is the number of fractional decimal digits carried by Scaled.
const Scale = 6

var scaleFactor = new(big.Int).Exp(bigTen, big.NewInt(Scale), nil)

// ScaleFactor returns 10^Scale.
func ScaleFactor() *big.Int {
	return new(big.Int).Set(scaleFactor)
}

// Scaled is a decimal stored as an integer count of 10⁻⁶ units. The zero value is 0.
type Scaled struct {
	units *big.Int
}

// NewScaled wraps a raw count of 10⁻⁶ units.
func NewScaled(units int64) Scaled {
	return Scaled{units: big.NewInt(units)}
}

// ScaledFromBig wraps a raw count of 10⁻⁶ units held in a big.Int.
func ScaledFromBig(units *big.Int) Scaled {
	if units == nil {
		return Scaled{}
	}
	return Scaled{units: new(big.Int).Set(units)}
}

// ScaledFromInt returns the whole number n at the 10⁻⁶ scale.
func ScaledFromInt(n int64) Scaled {
	return Scaled{units: new(big.Int).Mul(big.NewInt(n), scaleFactor)}
}

func (s Scaled) int() *big.Int {
	if s.units == nil {
		return new(big.Int)
	}
	return s.units
}

// Units returns a copy of the raw 10⁻⁶ unit count.
func (s Scaled) Units() *big.Int {
	return new(big.Int).Set(s.int())
}

// Sign returns -1, 0 or +1.
func (s Scaled) Sign() int {
	return s.int().Sign()
}

// IsZero reports whether s == 0.
func (s Scaled) IsZero() bool {
	return s.Sign() == 0
}

// Cmp compares s and o.
func (s Scaled) Cmp(o Scaled) int {
	return s.int().Cmp(o.int())
}

// Rational lifts s into exact rational form.
func (s Scaled) Rational() Rational {
	return FromBig(s.int(), scaleFactor)
}

// FromScaled is the engine's constructor from the fixed-scale representation.
func FromScaled(s Scaled) Rational {
	return s.Rational()
}

// String renders s exactly with trailing zeros trimmed.
func (s Scaled) String() string {
	return s.Rational().ToDecimalString(Scale, true)
}
