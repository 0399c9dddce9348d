package estimate

import (
	"strconv"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// CoverageRequest is an area-per-unit estimate (paint, sealant, seed).
// Rate is the area one product unit covers, measured in RateUnit.
type CoverageRequest struct {
	Area         numeric.Rational
	AreaUnit     units.Area
	Rate         numeric.Rational
	RateUnit     units.Area
	Coats        int64
	WastePercent numeric.Rational
	Price        *Pricing
	Waste        WastePolicy
}

// CoverageResult is the outcome of Coverage.
type CoverageResult struct {
	Area       AreaBreakdown
	Coats      int64
	UnitsExact numeric.Rational
	UnitsToBuy numeric.Rational
	Cost       *Cost
	Warnings   []Warning
}

// Coverage computes (area in rate unit ÷ rate) × coats × (1 + waste% ÷ 100).
func Coverage(req CoverageRequest) (CoverageResult, error) {
	if !req.AreaUnit.Valid() {
		return CoverageResult{}, errs.New("areaUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+req.AreaUnit.String()))
	}
	if !req.RateUnit.Valid() {
		return CoverageResult{}, errs.New("rateUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+req.RateUnit.String()))
	}
	if req.Area.Sign() <= 0 {
		return CoverageResult{}, errs.New("area", errs.CodeMustBePositive,
			errs.WithMessage("area must be greater than zero"))
	}
	if req.Rate.Sign() <= 0 {
		return CoverageResult{}, errs.New("coverageRate", errs.CodeMustBePositive,
			errs.WithMessage("coverage rate must be greater than zero"))
	}
	if req.Coats < 1 {
		return CoverageResult{}, invalidCoats(strconv.FormatInt(req.Coats, 10))
	}
	warnings, err := req.Waste.Check(req.WastePercent)
	if err != nil {
		return CoverageResult{}, err
	}
	if err := req.Price.validate(false, true); err != nil {
		return CoverageResult{}, err
	}

	inRateUnit := units.Convert(req.Area, req.AreaUnit, req.RateUnit)
	exact := ApplyWaste(inRateUnit.Div(req.Rate).Mul(numeric.FromInt(req.Coats)), req.WastePercent)

	result := CoverageResult{
		Area:       AreaBreakdown{SquareFeet: units.Convert(req.Area, req.AreaUnit, units.SquareFoot)},
		Coats:      req.Coats,
		UnitsExact: exact,
		UnitsToBuy: exact.Ceil(),
		Cost:       nil,
		Warnings:   warnings,
	}
	if req.Price != nil {
		cost := req.Price.cost(result.UnitsToBuy, result.UnitsExact)
		result.Cost = &cost
	}
	return result, nil
}

// Coats validates a parsed coat count: it must be an integer of at least one.
func Coats(value numeric.Rational) (int64, error) {
	if !value.IsInt() || value.Sign() <= 0 || !value.Num().IsInt64() {
		return 0, invalidCoats(value.ToDecimalString(numeric.Scale, true))
	}
	return value.Num().Int64(), nil
}

func invalidCoats(input string) *errs.E {
	return errs.New("coats", errs.CodeInvalidCoats,
		errs.WithMessage("coats must be a whole number of at least 1"),
		errs.WithDetail("input", input))
}
