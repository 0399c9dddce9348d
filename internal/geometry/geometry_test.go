package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

func n(s string) numeric.Rational { return numeric.MustParse(s) }

func TestLiteralAreas(t *testing.T) {
	var e Engine

	area, err := e.Area(Rectangle{Length: n("20"), Width: n("8"), Unit: units.Foot})
	require.NoError(t, err)
	require.Equal(t, "160", area.String())

	area, err = e.Area(Circle{Radius: n("5"), Unit: units.Foot})
	require.NoError(t, err)
	require.Equal(t, "78.539825", area.ToDecimalString(6, true))
	require.Equal(t, "78.5398", area.ToDecimalString(4, true))

	area, err = e.Area(Triangle{Base: n("4"), Height: n("2"), Unit: units.Foot})
	require.NoError(t, err)
	require.Equal(t, "4", area.String())

	area, err = e.Area(Square{Side: n("3"), Unit: units.Yard})
	require.NoError(t, err)
	require.Equal(t, "81", area.String())
}

func TestRectangleBorderInMeters(t *testing.T) {
	var e Engine
	shape := RectangleBorder{
		OuterLength: n("6.0"), OuterWidth: n("4.2"),
		InnerLength: n("4.8"), InnerWidth: n("3.0"),
		Unit: units.Meter,
	}
	area, err := e.AreaIn(shape, units.SquareMeter)
	require.NoError(t, err)
	require.Equal(t, "10.8", area.ToDecimalString(6, true))
}

func TestBorderShapesSubtractInner(t *testing.T) {
	var e Engine
	ring, err := e.Area(CircleBorder{OuterRadius: n("5"), InnerRadius: n("3"), Unit: units.Foot})
	require.NoError(t, err)
	require.True(t, ring.Equal(Pi6.Mul(n("16"))))

	band, err := e.Area(TriangleBorder{
		OuterBase: n("10"), OuterHeight: n("6"),
		InnerBase: n("4"), InnerHeight: n("2"),
		Unit: units.Foot,
	})
	require.NoError(t, err)
	require.Equal(t, "26", band.String())
}

func TestCircleBorderInvalidWheneverInnerNotSmaller(t *testing.T) {
	var e Engine
	for _, inner := range []string{"5", "5.000001", "12"} {
		_, err := e.Area(CircleBorder{OuterRadius: n("5"), InnerRadius: n(inner), Unit: units.Foot})
		require.Error(t, err, inner)
		require.Equal(t, errs.CodeInvalidBorder, errs.CodeOf(err), inner)
		require.Equal(t, FieldInnerRadius, errs.FieldOf(err))
	}
}

func TestRectangleBorderChecksEachPair(t *testing.T) {
	var e Engine
	_, err := e.Area(RectangleBorder{
		OuterLength: n("10"), OuterWidth: n("4"),
		InnerLength: n("2"), InnerWidth: n("4"),
		Unit: units.Foot,
	})
	require.Equal(t, errs.CodeInvalidBorder, errs.CodeOf(err))
	require.Equal(t, FieldInnerWidth, errs.FieldOf(err))
}

func TestZeroDimensionIsAnError(t *testing.T) {
	var e Engine
	_, err := e.Area(Rectangle{Length: n("20"), Width: numeric.Rational{}, Unit: units.Foot})
	require.Equal(t, errs.CodeMustBePositive, errs.CodeOf(err))
	require.Equal(t, FieldWidth, errs.FieldOf(err))
}

func TestVolume(t *testing.T) {
	var e Engine
	v, err := e.Volume(n("160"), n("3"), units.Inch)
	require.NoError(t, err)
	require.Equal(t, "40", v.String())

	_, err = e.Volume(n("160"), numeric.Rational{}, units.Inch)
	require.Equal(t, errs.CodeMustBePositive, errs.CodeOf(err))

	_, err = e.Volume(n("160"), n("1"), units.Linear("furlong"))
	require.Equal(t, errs.CodeUnknownUnit, errs.CodeOf(err))
}

func TestPiSelection(t *testing.T) {
	high := NewEngine(PiHigh)
	area, err := high.Area(Circle{Radius: n("1"), Unit: units.Foot})
	require.NoError(t, err)
	require.Equal(t, "3.14159265", area.ToDecimalString(8, true))
}

func TestBuildAndParseKind(t *testing.T) {
	kind, err := ParseKind("Circle Border")
	require.NoError(t, err)
	require.Equal(t, KindCircleBorder, kind)

	shape, err := Build(kind, map[string]numeric.Rational{
		FieldOuterRadius: n("2"),
		FieldInnerRadius: n("1"),
	}, units.Meter)
	require.NoError(t, err)
	ring, ok := shape.(CircleBorder)
	require.True(t, ok)
	require.True(t, ring.OuterRadius.Equal(n("2")))
	require.True(t, ring.InnerRadius.Equal(n("1")))
	require.Equal(t, units.Meter, ring.Unit)
	require.Equal(t, []string{FieldOuterRadius, FieldInnerRadius}, Fields(kind))

	_, err = ParseKind("hexagon")
	require.Equal(t, errs.CodeUnknownShape, errs.CodeOf(err))
	require.Len(t, Kinds(), 7)
}
