// Package geometry maps shapes to areas and areas to volumes using exact
// rational arithmetic. Areas are returned in square feet and volumes in
// cubic feet.
package geometry

import (
	"sort"
	"strings"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// Kind tags a shape variant.
type Kind string

// Shape kinds.
const (
	KindSquare          Kind = "square"
	KindRectangle       Kind = "rectangle"
	KindCircle          Kind = "circle"
	KindTriangle        Kind = "triangle"
	KindRectangleBorder Kind = "rectangle_border"
	KindCircleBorder    Kind = "circle_border"
	KindTriangleBorder  Kind = "triangle_border"
)

// Shape is a closed set of variants; each carries only the dimensions its
// formula needs, all measured in Unit.
type Shape interface {
	Kind() Kind
	LengthUnit() units.Linear
	dimensions() []dimension
	pairs() []pair
	area(pi numeric.Rational, dims map[string]numeric.Rational) numeric.Rational
}

type dimension struct {
	field string
	value numeric.Rational
}

// pair names an inner dimension that must stay below its outer counterpart.
type pair struct {
	outer string
	inner string
}

// Square is a square of side Side.
type Square struct {
	Side numeric.Rational
	Unit units.Linear
}

// Rectangle is a Length × Width rectangle.
type Rectangle struct {
	Length numeric.Rational
	Width  numeric.Rational
	Unit   units.Linear
}

// Circle is a disc of radius Radius.
type Circle struct {
	Radius numeric.Rational
	Unit   units.Linear
}

// Triangle is a triangle with the given base and perpendicular height.
type Triangle struct {
	Base   numeric.Rational
	Height numeric.Rational
	Unit   units.Linear
}

// RectangleBorder is the frame between two rectangles.
type RectangleBorder struct {
	OuterLength numeric.Rational
	OuterWidth  numeric.Rational
	InnerLength numeric.Rational
	InnerWidth  numeric.Rational
	Unit        units.Linear
}

// CircleBorder is the ring between two concentric circles.
type CircleBorder struct {
	OuterRadius numeric.Rational
	InnerRadius numeric.Rational
	Unit        units.Linear
}

// TriangleBorder is the band between two triangles.
type TriangleBorder struct {
	OuterBase   numeric.Rational
	OuterHeight numeric.Rational
	InnerBase   numeric.Rational
	InnerHeight numeric.Rational
	Unit        units.Linear
}

// Dimension field names, shared with the calculator input map.
const (
	FieldSide        = "side"
	FieldLength      = "length"
	FieldWidth       = "width"
	FieldRadius      = "radius"
	FieldBase        = "base"
	FieldHeight      = "height"
	FieldOuterLength = "outerLength"
	FieldOuterWidth  = "outerWidth"
	FieldInnerLength = "innerLength"
	FieldInnerWidth  = "innerWidth"
	FieldOuterRadius = "outerRadius"
	FieldInnerRadius = "innerRadius"
	FieldOuterBase   = "outerBase"
	FieldOuterHeight = "outerHeight"
	FieldInnerBase   = "innerBase"
	FieldInnerHeight = "innerHeight"
)

var shapeFields = map[Kind][]string{
	KindSquare:          {FieldSide},
	KindRectangle:       {FieldLength, FieldWidth},
	KindCircle:          {FieldRadius},
	KindTriangle:        {FieldBase, FieldHeight},
	KindRectangleBorder: {FieldOuterLength, FieldOuterWidth, FieldInnerLength, FieldInnerWidth},
	KindCircleBorder:    {FieldOuterRadius, FieldInnerRadius},
	KindTriangleBorder:  {FieldOuterBase, FieldOuterHeight, FieldInnerBase, FieldInnerHeight},
}

// ParseKind resolves a shape tag such as "circle_border" or "Circle Border".
func ParseKind(tag string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	kind := Kind(normalized)
	if _, ok := shapeFields[kind]; ok {
		return kind, nil
	}
	known := make([]string, 0, len(shapeFields))
	for k := range shapeFields {
		known = append(known, string(k))
	}
	sort.Strings(known)
	return "", errs.New("shape", errs.CodeUnknownShape,
		errs.WithMessage("unknown shape "+strings.TrimSpace(tag)),
		errs.WithDetail("accepted", strings.Join(known, ",")))
}

// Fields lists the dimension fields a shape kind needs, in entry order.
func Fields(kind Kind) []string {
	fields := shapeFields[kind]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Kinds lists every shape kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(shapeFields))
	for k := range shapeFields {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build assembles the variant for kind from field values keyed by the Field* names.
func Build(kind Kind, dims map[string]numeric.Rational, unit units.Linear) (Shape, error) {
	get := func(field string) numeric.Rational { return dims[field] }
	switch kind {
	case KindSquare:
		return Square{Side: get(FieldSide), Unit: unit}, nil
	case KindRectangle:
		return Rectangle{Length: get(FieldLength), Width: get(FieldWidth), Unit: unit}, nil
	case KindCircle:
		return Circle{Radius: get(FieldRadius), Unit: unit}, nil
	case KindTriangle:
		return Triangle{Base: get(FieldBase), Height: get(FieldHeight), Unit: unit}, nil
	case KindRectangleBorder:
		return RectangleBorder{
			OuterLength: get(FieldOuterLength), OuterWidth: get(FieldOuterWidth),
			InnerLength: get(FieldInnerLength), InnerWidth: get(FieldInnerWidth),
			Unit: unit,
		}, nil
	case KindCircleBorder:
		return CircleBorder{OuterRadius: get(FieldOuterRadius), InnerRadius: get(FieldInnerRadius), Unit: unit}, nil
	case KindTriangleBorder:
		return TriangleBorder{
			OuterBase: get(FieldOuterBase), OuterHeight: get(FieldOuterHeight),
			InnerBase: get(FieldInnerBase), InnerHeight: get(FieldInnerHeight),
			Unit: unit,
		}, nil
	default:
		return nil, errs.New("shape", errs.CodeUnknownShape, errs.WithMessage("unknown shape "+string(kind)))
	}
}

func (Square) Kind() Kind          { return KindSquare }
func (Rectangle) Kind() Kind       { return KindRectangle }
func (Circle) Kind() Kind          { return KindCircle }
func (Triangle) Kind() Kind        { return KindTriangle }
func (RectangleBorder) Kind() Kind { return KindRectangleBorder }
func (CircleBorder) Kind() Kind    { return KindCircleBorder }
func (TriangleBorder) Kind() Kind  { return KindTriangleBorder }

func (s Square) LengthUnit() units.Linear          { return s.Unit }
func (s Rectangle) LengthUnit() units.Linear       { return s.Unit }
func (s Circle) LengthUnit() units.Linear          { return s.Unit }
func (s Triangle) LengthUnit() units.Linear        { return s.Unit }
func (s RectangleBorder) LengthUnit() units.Linear { return s.Unit }
func (s CircleBorder) LengthUnit() units.Linear    { return s.Unit }
func (s TriangleBorder) LengthUnit() units.Linear  { return s.Unit }

func (s Square) dimensions() []dimension {
	return []dimension{{FieldSide, s.Side}}
}

func (s Rectangle) dimensions() []dimension {
	return []dimension{{FieldLength, s.Length}, {FieldWidth, s.Width}}
}

func (s Circle) dimensions() []dimension {
	return []dimension{{FieldRadius, s.Radius}}
}

func (s Triangle) dimensions() []dimension {
	return []dimension{{FieldBase, s.Base}, {FieldHeight, s.Height}}
}

func (s RectangleBorder) dimensions() []dimension {
	return []dimension{
		{FieldOuterLength, s.OuterLength}, {FieldOuterWidth, s.OuterWidth},
		{FieldInnerLength, s.InnerLength}, {FieldInnerWidth, s.InnerWidth},
	}
}

func (s CircleBorder) dimensions() []dimension {
	return []dimension{{FieldOuterRadius, s.OuterRadius}, {FieldInnerRadius, s.InnerRadius}}
}

func (s TriangleBorder) dimensions() []dimension {
	return []dimension{
		{FieldOuterBase, s.OuterBase}, {FieldOuterHeight, s.OuterHeight},
		{FieldInnerBase, s.InnerBase}, {FieldInnerHeight, s.InnerHeight},
	}
}

func (Square) pairs() []pair    { return nil }
func (Rectangle) pairs() []pair { return nil }
func (Circle) pairs() []pair    { return nil }
func (Triangle) pairs() []pair  { return nil }

func (RectangleBorder) pairs() []pair {
	return []pair{{FieldOuterLength, FieldInnerLength}, {FieldOuterWidth, FieldInnerWidth}}
}

func (CircleBorder) pairs() []pair {
	return []pair{{FieldOuterRadius, FieldInnerRadius}}
}

func (TriangleBorder) pairs() []pair {
	return []pair{{FieldOuterBase, FieldInnerBase}, {FieldOuterHeight, FieldInnerHeight}}
}

var half = numeric.NewRational(1, 2)

func (Square) area(_ numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	return d[FieldSide].Mul(d[FieldSide])
}

func (Rectangle) area(_ numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	return d[FieldLength].Mul(d[FieldWidth])
}

func (Circle) area(pi numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	return circle(pi, d[FieldRadius])
}

func (Triangle) area(_ numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	return d[FieldBase].Mul(d[FieldHeight]).Mul(half)
}

func (RectangleBorder) area(_ numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	outer := d[FieldOuterLength].Mul(d[FieldOuterWidth])
	inner := d[FieldInnerLength].Mul(d[FieldInnerWidth])
	return clampZero(outer.Sub(inner))
}

func (CircleBorder) area(pi numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	return clampZero(circle(pi, d[FieldOuterRadius]).Sub(circle(pi, d[FieldInnerRadius])))
}

func (TriangleBorder) area(_ numeric.Rational, d map[string]numeric.Rational) numeric.Rational {
	outer := d[FieldOuterBase].Mul(d[FieldOuterHeight]).Mul(half)
	inner := d[FieldInnerBase].Mul(d[FieldInnerHeight]).Mul(half)
	return clampZero(outer.Sub(inner))
}

func circle(pi, radius numeric.Rational) numeric.Rational {
	return pi.Mul(radius).Mul(radius)
}

func clampZero(v numeric.Rational) numeric.Rational {
	if v.Sign() < 0 {
		return numeric.Rational{}
	}
	return v
}
