// Package units holds the exact conversion ratios for every length, area and
// volume unit the calculators accept. Ratios are rational constants relative
// to the SI base unit of each dimension (m, m², m³).
package units

import (
	"sort"
	"strings"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
)

// Unit is implemented by Linear, Area and Volume.
type Unit interface {
	comparable
	// Ratio is the exact size of one unit expressed in the SI base unit.
	Ratio() numeric.Rational
	String() string
}

// Convert returns amount × from.Ratio ÷ to.Ratio. Same-unit conversion returns
// amount untouched.
func Convert[U Unit](amount numeric.Rational, from, to U) numeric.Rational {
	if from == to {
		return amount
	}
	return amount.Mul(from.Ratio()).Div(to.Ratio())
}

// Linear is a length unit.
type Linear string

// Area is a surface unit.
type Area string

// Volume is a capacity unit.
type Volume string

// Length units.
const (
	Inch       Linear = "in"
	Foot       Linear = "ft"
	Yard       Linear = "yd"
	Meter      Linear = "m"
	Centimeter Linear = "cm"
	Millimeter Linear = "mm"
)

// Area units.
const (
	SquareFoot       Area = "ft2"
	SquareInch       Area = "in2"
	SquareYard       Area = "yd2"
	SquareMeter      Area = "m2"
	SquareCentimeter Area = "cm2"
	Acre             Area = "acre"
	Hectare          Area = "hectare"
)

// Volume units.
const (
	CubicYard  Volume = "yd3"
	CubicFoot  Volume = "ft3"
	CubicMeter Volume = "m3"
	Liter      Volume = "l"
	CubicInch  Volume = "in3"
)

var linearRatios = map[Linear]numeric.Rational{
	Inch:       numeric.NewRational(254, 10000),
	Foot:       numeric.NewRational(3048, 10000),
	Yard:       numeric.NewRational(9144, 10000),
	Meter:      numeric.FromInt(1),
	Centimeter: numeric.NewRational(1, 100),
	Millimeter: numeric.NewRational(1, 1000),
}

var areaRatios = map[Area]numeric.Rational{
	SquareFoot:       Foot.Ratio().Mul(Foot.Ratio()),
	SquareInch:       Inch.Ratio().Mul(Inch.Ratio()),
	SquareYard:       Yard.Ratio().Mul(Yard.Ratio()),
	SquareMeter:      numeric.FromInt(1),
	SquareCentimeter: numeric.NewRational(1, 10000),
	Acre:             numeric.NewRational(40468564224, 10000000),
	Hectare:          numeric.FromInt(10000),
}

var volumeRatios = map[Volume]numeric.Rational{
	CubicFoot:  Foot.Ratio().Mul(Foot.Ratio()).Mul(Foot.Ratio()),
	CubicYard:  Foot.Ratio().Mul(Foot.Ratio()).Mul(Foot.Ratio()).Mul(numeric.FromInt(27)),
	CubicMeter: numeric.FromInt(1),
	Liter:      numeric.NewRational(1, 1000),
	CubicInch:  Inch.Ratio().Mul(Inch.Ratio()).Mul(Inch.Ratio()),
}

// Ratio returns metres per unit.
func (u Linear) Ratio() numeric.Rational { return linearRatios[u] }

// Ratio returns square metres per unit.
func (u Area) Ratio() numeric.Rational { return areaRatios[u] }

// Ratio returns cubic metres per unit.
func (u Volume) Ratio() numeric.Rational { return volumeRatios[u] }

func (u Linear) String() string { return string(u) }
func (u Area) String() string   { return string(u) }
func (u Volume) String() string { return string(u) }

// Valid reports whether u is a known length unit.
func (u Linear) Valid() bool {
	_, ok := linearRatios[u]
	return ok
}

// Valid reports whether u is a known area unit.
func (u Area) Valid() bool {
	_, ok := areaRatios[u]
	return ok
}

// Valid reports whether u is a known volume unit.
func (u Volume) Valid() bool {
	_, ok := volumeRatios[u]
	return ok
}

// Squared returns the area unit whose side is one u, if the table has one.
func (u Linear) Squared() (Area, bool) {
	switch u {
	case Inch:
		return SquareInch, true
	case Foot:
		return SquareFoot, true
	case Yard:
		return SquareYard, true
	case Meter:
		return SquareMeter, true
	case Centimeter:
		return SquareCentimeter, true
	default:
		return "", false
	}
}

// Cubed returns the volume unit whose edge is one u, if the table has one.
func (u Linear) Cubed() (Volume, bool) {
	switch u {
	case Inch:
		return CubicInch, true
	case Foot:
		return CubicFoot, true
	case Yard:
		return CubicYard, true
	case Meter:
		return CubicMeter, true
	default:
		return "", false
	}
}

var linearAliases = map[string]Linear{
	"in": Inch, "inch": Inch, "inches": Inch, `"`: Inch,
	"ft": Foot, "foot": Foot, "feet": Foot, "'": Foot,
	"yd": Yard, "yard": Yard, "yards": Yard,
	"m": Meter, "meter": Meter, "meters": Meter, "metre": Meter, "metres": Meter,
	"cm": Centimeter, "centimeter": Centimeter, "centimeters": Centimeter,
	"mm": Millimeter, "millimeter": Millimeter, "millimeters": Millimeter,
}

var areaAliases = map[string]Area{
	"ft2": SquareFoot, "ft²": SquareFoot, "sqft": SquareFoot, "sq ft": SquareFoot, "square feet": SquareFoot,
	"in2": SquareInch, "in²": SquareInch, "sqin": SquareInch, "sq in": SquareInch, "square inches": SquareInch,
	"yd2": SquareYard, "yd²": SquareYard, "sqyd": SquareYard, "sq yd": SquareYard, "square yards": SquareYard,
	"m2": SquareMeter, "m²": SquareMeter, "sqm": SquareMeter, "sq m": SquareMeter, "square meters": SquareMeter,
	"cm2": SquareCentimeter, "cm²": SquareCentimeter, "sqcm": SquareCentimeter,
	"acre": Acre, "acres": Acre, "ac": Acre,
	"hectare": Hectare, "hectares": Hectare, "ha": Hectare,
}

var volumeAliases = map[string]Volume{
	"yd3": CubicYard, "yd³": CubicYard, "cuyd": CubicYard, "cu yd": CubicYard, "cubic yards": CubicYard,
	"ft3": CubicFoot, "ft³": CubicFoot, "cuft": CubicFoot, "cu ft": CubicFoot, "cubic feet": CubicFoot,
	"m3": CubicMeter, "m³": CubicMeter, "cum": CubicMeter, "cubic meters": CubicMeter,
	"l": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter,
	"in3": CubicInch, "in³": CubicInch, "cuin": CubicInch, "cubic inches": CubicInch,
}

func normalizeTag(tag string) string {
	return strings.Join(strings.Fields(strings.ToLower(tag)), " ")
}

// ParseLinear resolves a length unit tag or alias.
func ParseLinear(tag string) (Linear, error) {
	if u, ok := linearAliases[normalizeTag(tag)]; ok {
		return u, nil
	}
	return "", unknownUnit(tag, LinearUnits())
}

// ParseArea resolves an area unit tag or alias.
func ParseArea(tag string) (Area, error) {
	if u, ok := areaAliases[normalizeTag(tag)]; ok {
		return u, nil
	}
	return "", unknownUnit(tag, AreaUnits())
}

// ParseVolume resolves a volume unit tag or alias.
func ParseVolume(tag string) (Volume, error) {
	if u, ok := volumeAliases[normalizeTag(tag)]; ok {
		return u, nil
	}
	return "", unknownUnit(tag, VolumeUnits())
}

func unknownUnit[U Unit](tag string, known []U) *errs.E {
	names := make([]string, 0, len(known))
	for _, u := range known {
		names = append(names, u.String())
	}
	return errs.New("", errs.CodeUnknownUnit,
		errs.WithMessage("unknown unit "+strings.TrimSpace(tag)),
		errs.WithDetail("accepted", strings.Join(names, ",")))
}

// LinearUnits lists every length unit in a stable order.
func LinearUnits() []Linear { return sortedKeys(linearRatios) }

// AreaUnits lists every area unit in a stable order.
func AreaUnits() []Area { return sortedKeys(areaRatios) }

// VolumeUnits lists every volume unit in a stable order.
func VolumeUnits() []Volume { return sortedKeys(volumeRatios) }

func sortedKeys[U ~string](m map[U]numeric.Rational) []U {
	out := make([]U, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
