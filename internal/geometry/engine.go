package geometry

import (
	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

var (
	// Pi6 is π truncated to the six-decimal constant published calculators use.
	Pi6 = numeric.NewRational(3141593, 1000000)
	// PiHigh is π to twenty decimals.
	PiHigh = numeric.MustParse("3.14159265358979323846")
)

// Engine evaluates shape formulas. The zero value uses Pi6.
type Engine struct {
	Pi numeric.Rational
}

// NewEngine returns an Engine using pi, or Pi6 when pi is zero.
func NewEngine(pi numeric.Rational) Engine {
	return Engine{Pi: pi}
}

func (e Engine) pi() numeric.Rational {
	if e.Pi.IsZero() {
		return Pi6
	}
	return e.Pi
}

// Validate checks that every dimension is strictly positive and that each
// inner measure of a border shape is smaller than its outer pair.
func Validate(s Shape) error {
	if s == nil {
		return errs.New("shape", errs.CodeUnknownShape, errs.WithMessage("choose a shape"))
	}
	if !s.LengthUnit().Valid() {
		return errs.New("lengthUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+s.LengthUnit().String()))
	}
	dims := s.dimensions()
	values := make(map[string]numeric.Rational, len(dims))
	for _, d := range dims {
		if d.value.Sign() <= 0 {
			return errs.New(d.field, errs.CodeMustBePositive,
				errs.WithMessage(d.field+" must be greater than zero"))
		}
		values[d.field] = d.value
	}
	for _, p := range s.pairs() {
		if values[p.inner].Cmp(values[p.outer]) >= 0 {
			return errs.New(p.inner, errs.CodeInvalidBorder,
				errs.WithMessage(p.inner+" must be smaller than "+p.outer),
				errs.WithDetail("outer", values[p.outer].ToDecimalString(numeric.Scale, true)),
				errs.WithDetail("inner", values[p.inner].ToDecimalString(numeric.Scale, true)))
		}
	}
	return nil
}

// Area validates s and returns its area in square feet.
func (e Engine) Area(s Shape) (numeric.Rational, error) {
	if err := Validate(s); err != nil {
		return numeric.Rational{}, err
	}
	dims := s.dimensions()
	inFeet := make(map[string]numeric.Rational, len(dims))
	for _, d := range dims {
		inFeet[d.field] = units.Convert(d.value, s.LengthUnit(), units.Foot)
	}
	return s.area(e.pi(), inFeet), nil
}

// AreaIn validates s and returns its area in the requested unit.
func (e Engine) AreaIn(s Shape, unit units.Area) (numeric.Rational, error) {
	area, err := e.Area(s)
	if err != nil {
		return numeric.Rational{}, err
	}
	return units.Convert(area, units.SquareFoot, unit), nil
}

// Volume multiplies an area in square feet by a depth, returning cubic feet.
// The depth is converted to feet first.
func (e Engine) Volume(areaSqFt numeric.Rational, depth numeric.Rational, depthUnit units.Linear) (numeric.Rational, error) {
	if !depthUnit.Valid() {
		return numeric.Rational{}, errs.New("depthUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+depthUnit.String()))
	}
	if depth.Sign() <= 0 {
		return numeric.Rational{}, errs.New("depth", errs.CodeMustBePositive,
			errs.WithMessage("depth must be greater than zero"))
	}
	return areaSqFt.Mul(units.Convert(depth, depthUnit, units.Foot)), nil
}
