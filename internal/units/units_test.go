package units

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
)

func TestExactConstants(t *testing.T) {
	require.Equal(t, "127/5000", Inch.Ratio().String())
	require.Equal(t, "12", Convert(numeric.FromInt(1), Foot, Inch).String())
	require.Equal(t, "3", Convert(numeric.FromInt(1), Yard, Foot).String())
	require.Equal(t, "27", Convert(numeric.FromInt(1), CubicYard, CubicFoot).String())
	require.Equal(t, "1000", Convert(numeric.FromInt(1), CubicMeter, Liter).String())
	require.Equal(t, "144", Convert(numeric.FromInt(1), SquareFoot, SquareInch).String())
	require.Equal(t, "4046.8564224", Acre.Ratio().ToDecimalString(7, true))
	require.Equal(t, "43560", Convert(numeric.FromInt(1), Acre, SquareFoot).String())
	require.Equal(t, "1728", Convert(numeric.FromInt(1), CubicFoot, CubicInch).String())
}

func TestSameUnitIsIdentity(t *testing.T) {
	amount := numeric.NewRational(7, 3)
	got := Convert(amount, Meter, Meter)
	require.True(t, got.Equal(amount))
}

func TestConversionRoundTripEveryPair(t *testing.T) {
	amount := numeric.MustParse("123.456789")
	for _, from := range LinearUnits() {
		for _, to := range LinearUnits() {
			back := Convert(Convert(amount, from, to), to, from)
			require.True(t, back.Equal(amount), "%s -> %s", from, to)
		}
	}
	for _, from := range AreaUnits() {
		for _, to := range AreaUnits() {
			back := Convert(Convert(amount, from, to), to, from)
			require.True(t, back.Equal(amount), "%s -> %s", from, to)
		}
	}
	for _, from := range VolumeUnits() {
		for _, to := range VolumeUnits() {
			back := Convert(Convert(amount, from, to), to, from)
			require.True(t, back.Equal(amount), "%s -> %s", from, to)
		}
	}
}

func TestSquaredAndCubedAgreeWithTables(t *testing.T) {
	for _, u := range LinearUnits() {
		if sq, ok := u.Squared(); ok {
			require.True(t, sq.Ratio().Equal(u.Ratio().Mul(u.Ratio())), u)
		}
		if cu, ok := u.Cubed(); ok {
			require.True(t, cu.Ratio().Equal(u.Ratio().Mul(u.Ratio()).Mul(u.Ratio())), u)
		}
	}
	_, ok := Millimeter.Squared()
	require.False(t, ok)
}

func TestParseAliases(t *testing.T) {
	l, err := ParseLinear(" Feet ")
	require.NoError(t, err)
	require.Equal(t, Foot, l)

	a, err := ParseArea("sq  ft")
	require.NoError(t, err)
	require.Equal(t, SquareFoot, a)

	v, err := ParseVolume("Cubic Yards")
	require.NoError(t, err)
	require.Equal(t, CubicYard, v)

	_, err = ParseVolume("bushel")
	require.Equal(t, errs.CodeUnknownUnit, errs.CodeOf(err))
}

func TestEveryTableUnitParsesByTag(t *testing.T) {
	for _, u := range LinearUnits() {
		got, err := ParseLinear(u.String())
		require.NoError(t, err)
		require.Equal(t, u, got)
	}
	for _, u := range AreaUnits() {
		got, err := ParseArea(u.String())
		require.NoError(t, err)
		require.Equal(t, u, got)
	}
	for _, u := range VolumeUnits() {
		got, err := ParseVolume(u.String())
		require.NoError(t, err)
		require.Equal(t, u, got)
	}
}
