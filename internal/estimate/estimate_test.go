package estimate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

func n(s string) numeric.Rational { return numeric.MustParse(s) }

func mulchRequest() Request {
	return Request{
		Area:         n("160"),
		AreaUnit:     units.SquareFoot,
		Depth:        n("3"),
		DepthUnit:    units.Inch,
		WastePercent: n("10"),
		Bag:          nil,
		Price:        nil,
		Waste:        DefaultWastePolicy(),
	}
}

func TestVolumeWithWaste(t *testing.T) {
	res, err := Estimate(mulchRequest())
	require.NoError(t, err)
	require.Equal(t, "40", res.Volume.CubicFeet.String())
	require.Equal(t, "44", res.VolumeWithWaste.CubicFeet.String())
	require.Equal(t, "44/27", res.VolumeWithWaste.In(units.CubicYard).String())
	require.Equal(t, "1.6296", res.VolumeWithWaste.In(units.CubicYard).ToDecimalString(4, false))
	require.Equal(t, "160", res.Area.In(units.SquareFoot).String())
	require.Empty(t, res.Warnings)
	require.Nil(t, res.Bags)
	require.Nil(t, res.Cost)
}

func TestBagCountDoesNotOvershootExactRatio(t *testing.T) {
	req := mulchRequest()
	req.Bag = &Bag{Size: n("2"), Unit: units.CubicFoot}
	res, err := Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "22", res.Bags.Exact.String())
	require.Equal(t, "22", res.Bags.ToBuy.String())

	req.Bag = &Bag{Size: n("1.5"), Unit: units.CubicFoot}
	res, err = Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "88/3", res.Bags.Exact.String())
	require.Equal(t, "30", res.Bags.ToBuy.String())
}

func TestBagSizeInLiters(t *testing.T) {
	req := mulchRequest()
	req.Bag = &Bag{Size: n("50"), Unit: units.Liter}
	res, err := Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "25", res.Bags.ToBuy.String())
}

func TestCostPerBagAndPerVolume(t *testing.T) {
	req := mulchRequest()
	req.Bag = &Bag{Size: n("1.5"), Unit: units.CubicFoot}
	req.Price = &Pricing{UnitPrice: n("3.98"), Basis: PricePerBag}
	res, err := Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "119.4", res.Cost.Amount.ToDecimalString(6, true))
	require.True(t, res.Cost.Exact.Equal(n("3.98").Mul(n("88").Div(n("3")))))

	req = mulchRequest()
	req.Price = &Pricing{UnitPrice: n("27"), Basis: PricePerVolume, VolumeUnit: units.CubicYard}
	res, err = Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "44", res.Cost.Amount.String())
	require.True(t, res.Cost.Amount.Equal(res.Cost.Exact))
}

func TestPricingValidation(t *testing.T) {
	req := mulchRequest()
	req.Price = &Pricing{UnitPrice: n("3"), Basis: PricePerBag}
	_, err := Estimate(req)
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))
	require.Equal(t, "priceBasis", errs.FieldOf(err))

	req.Price = &Pricing{UnitPrice: n("3"), Basis: PricePerVolume, VolumeUnit: "bushel"}
	_, err = Estimate(req)
	require.Equal(t, errs.CodeUnknownUnit, errs.CodeOf(err))

	req.Price = &Pricing{UnitPrice: n("-1"), Basis: PricePerVolume, VolumeUnit: units.CubicYard}
	_, err = Estimate(req)
	require.Equal(t, errs.CodeNegativeNotAllowed, errs.CodeOf(err))
}

func TestEstimateValidation(t *testing.T) {
	req := mulchRequest()
	req.Depth = numeric.Rational{}
	_, err := Estimate(req)
	require.Equal(t, errs.CodeMustBePositive, errs.CodeOf(err))
	require.Equal(t, "depth", errs.FieldOf(err))

	req = mulchRequest()
	req.Bag = &Bag{Size: numeric.Rational{}, Unit: units.CubicFoot}
	_, err = Estimate(req)
	require.Equal(t, errs.CodeMustBePositive, errs.CodeOf(err))
	require.Equal(t, "bagSize", errs.FieldOf(err))

	req = mulchRequest()
	req.Area = numeric.Rational{}
	_, err = Estimate(req)
	require.Equal(t, "area", errs.FieldOf(err))
}

func TestWasteThresholds(t *testing.T) {
	req := mulchRequest()

	req.WastePercent = n("50")
	res, err := Estimate(req)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)

	req.WastePercent = n("50.5")
	res, err = Estimate(req)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	require.Equal(t, WarningWasteHigh, res.Warnings[0].Code)

	req.WastePercent = n("250")
	res, err = Estimate(req)
	require.NoError(t, err)
	require.Equal(t, WarningWasteVeryHigh, res.Warnings[0].Code)

	req.WastePercent = n("10000.000001")
	_, err = Estimate(req)
	require.Equal(t, errs.CodeTooLarge, errs.CodeOf(err))
	require.Equal(t, "waste", errs.FieldOf(err))

	req.WastePercent = n("10")
	req.Waste = WastePolicy{}
	res, err = Estimate(req)
	require.NoError(t, err)
	require.Equal(t, "44", res.VolumeWithWaste.CubicFeet.String())
}

func TestWasteIsMonotonic(t *testing.T) {
	req := mulchRequest()
	prev := numeric.Rational{}
	for _, pct := range []string{"0", "0.000001", "5", "10", "49.5", "120", "9999"} {
		req.WastePercent = n(pct)
		res, err := Estimate(req)
		require.NoError(t, err)
		require.Equal(t, 1, res.VolumeWithWaste.CubicFeet.Cmp(prev), pct)
		prev = res.VolumeWithWaste.CubicFeet
	}
}

func paintRequest() CoverageRequest {
	return CoverageRequest{
		Area:         n("40"),
		AreaUnit:     units.SquareMeter,
		Rate:         n("350"),
		RateUnit:     units.SquareFoot,
		Coats:        2,
		WastePercent: n("10"),
		Price:        nil,
		Waste:        DefaultWastePolicy(),
	}
}

func TestCoverageConvertsIntoRateUnit(t *testing.T) {
	res, err := Coverage(paintRequest())
	require.NoError(t, err)
	sqft := units.Convert(n("40"), units.SquareMeter, units.SquareFoot)
	want := sqft.Div(n("350")).Mul(n("2")).Mul(n("1.1"))
	require.True(t, res.UnitsExact.Equal(want))
	require.Equal(t, "3", res.UnitsToBuy.String())
	require.Equal(t, "2.7063", res.UnitsExact.ToDecimalString(4, false))
}

func TestCoverageCoatsMonotonicAndValidated(t *testing.T) {
	req := paintRequest()
	prev := numeric.Rational{}
	for coats := int64(1); coats <= 4; coats++ {
		req.Coats = coats
		res, err := Coverage(req)
		require.NoError(t, err)
		require.Equal(t, 1, res.UnitsExact.Cmp(prev))
		prev = res.UnitsExact
	}

	req.Coats = 0
	_, err := Coverage(req)
	require.Equal(t, errs.CodeInvalidCoats, errs.CodeOf(err))

	req = paintRequest()
	req.Rate = numeric.Rational{}
	_, err = Coverage(req)
	require.Equal(t, errs.CodeMustBePositive, errs.CodeOf(err))
	require.Equal(t, "coverageRate", errs.FieldOf(err))
}

func TestCoveragePricing(t *testing.T) {
	req := paintRequest()
	req.Price = &Pricing{UnitPrice: n("42.50"), Basis: PricePerUnit}
	res, err := Coverage(req)
	require.NoError(t, err)
	require.Equal(t, "127.5", res.Cost.Amount.ToDecimalString(2, true))

	req.Price = &Pricing{UnitPrice: n("42.50"), Basis: PricePerBag}
	_, err = Coverage(req)
	require.Equal(t, errs.CodeInvalid, errs.CodeOf(err))
}

func TestCoatsParsing(t *testing.T) {
	c, err := Coats(n("3"))
	require.NoError(t, err)
	require.Equal(t, int64(3), c)

	for _, bad := range []string{"2.5", "0"} {
		_, err := Coats(n(bad))
		require.Equal(t, errs.CodeInvalidCoats, errs.CodeOf(err), bad)
	}
}
