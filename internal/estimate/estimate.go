// Package estimate turns geometry into purchasable quantities: waste-adjusted
// volume, bag counts, coverage units and cost. Every function is pure; requests
// are values and results are returned by value.
package estimate

import (
	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/geometry"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

var (
	hundred = numeric.FromInt(100)
	one     = numeric.FromInt(1)
)

// BreakdownAreaUnits is the fixed set of units every area is reported in.
var BreakdownAreaUnits = []units.Area{
	units.SquareFoot, units.SquareInch, units.SquareYard,
	units.SquareMeter, units.SquareCentimeter, units.Acre,
}

// BreakdownVolumeUnits is the fixed set of units every volume is reported in.
var BreakdownVolumeUnits = []units.Volume{
	units.CubicYard, units.CubicFoot, units.CubicMeter, units.Liter,
}

// AreaBreakdown holds an exact area and converts it on demand.
type AreaBreakdown struct {
	SquareFeet numeric.Rational
}

// In returns the area in unit.
func (a AreaBreakdown) In(unit units.Area) numeric.Rational {
	return units.Convert(a.SquareFeet, units.SquareFoot, unit)
}

// VolumeBreakdown holds an exact volume and converts it on demand.
type VolumeBreakdown struct {
	CubicFeet numeric.Rational
}

// In returns the volume in unit.
func (v VolumeBreakdown) In(unit units.Volume) numeric.Rational {
	return units.Convert(v.CubicFeet, units.CubicFoot, unit)
}

// Bag describes the package a volume product is sold in.
type Bag struct {
	Size numeric.Rational
	Unit units.Volume
}

// Request is a volume-product estimate (mulch, gravel, topsoil, compost).
type Request struct {
	Area         numeric.Rational
	AreaUnit     units.Area
	Depth        numeric.Rational
	DepthUnit    units.Linear
	WastePercent numeric.Rational
	Bag          *Bag
	Price        *Pricing
	Waste        WastePolicy
}

// Bags reports how many bags cover the waste-adjusted volume.
type Bags struct {
	Exact numeric.Rational
	ToBuy numeric.Rational
	Size  Bag
}

// Result is the outcome of Estimate.
type Result struct {
	Area            AreaBreakdown
	Volume          VolumeBreakdown
	VolumeWithWaste VolumeBreakdown
	Bags            *Bags
	Cost            *Cost
	Warnings        []Warning
}

// Estimate computes V = area × depth, Vw = V × (1 + waste% ÷ 100), and the
// optional bag count and cost.
func Estimate(req Request) (Result, error) {
	if !req.AreaUnit.Valid() {
		return Result{}, errs.New("areaUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+req.AreaUnit.String()))
	}
	if req.Area.Sign() <= 0 {
		return Result{}, errs.New("area", errs.CodeMustBePositive,
			errs.WithMessage("area must be greater than zero"))
	}
	warnings, err := req.Waste.Check(req.WastePercent)
	if err != nil {
		return Result{}, err
	}
	if err := validateBag(req.Bag); err != nil {
		return Result{}, err
	}
	if err := req.Price.validate(req.Bag != nil, false); err != nil {
		return Result{}, err
	}

	areaSqFt := units.Convert(req.Area, req.AreaUnit, units.SquareFoot)
	var engine geometry.Engine
	volume, err := engine.Volume(areaSqFt, req.Depth, req.DepthUnit)
	if err != nil {
		return Result{}, err
	}
	withWaste := ApplyWaste(volume, req.WastePercent)

	result := Result{
		Area:            AreaBreakdown{SquareFeet: areaSqFt},
		Volume:          VolumeBreakdown{CubicFeet: volume},
		VolumeWithWaste: VolumeBreakdown{CubicFeet: withWaste},
		Bags:            nil,
		Cost:            nil,
		Warnings:        warnings,
	}

	if req.Bag != nil {
		bagFt3 := units.Convert(req.Bag.Size, req.Bag.Unit, units.CubicFoot)
		exact := withWaste.Div(bagFt3)
		result.Bags = &Bags{Exact: exact, ToBuy: exact.Ceil(), Size: *req.Bag}
	}

	if req.Price != nil {
		var cost Cost
		switch req.Price.Basis {
		case PricePerBag:
			cost = req.Price.cost(result.Bags.ToBuy, result.Bags.Exact)
		case PricePerVolume:
			quantity := result.VolumeWithWaste.In(req.Price.VolumeUnit)
			cost = req.Price.cost(quantity, quantity)
		}
		result.Cost = &cost
	}
	return result, nil
}

// ApplyWaste returns volume × (1 + percent ÷ 100).
func ApplyWaste(volume, percent numeric.Rational) numeric.Rational {
	return volume.Mul(one.Add(percent.Div(hundred)))
}

func validateBag(bag *Bag) error {
	if bag == nil {
		return nil
	}
	if !bag.Unit.Valid() {
		return errs.New("bagUnit", errs.CodeUnknownUnit,
			errs.WithMessage("unknown unit "+bag.Unit.String()))
	}
	if bag.Size.Sign() <= 0 {
		return errs.New("bagSize", errs.CodeMustBePositive,
			errs.WithMessage("bag size must be greater than zero"))
	}
	return nil
}
