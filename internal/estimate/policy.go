package estimate

import (
	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// WarningCode classifies an advisory attached to a successful result.
type WarningCode string

const (
	// WarningWasteHigh flags a waste percentage above the soft threshold.
	WarningWasteHigh WarningCode = "waste_high"
	// WarningWasteVeryHigh flags a waste percentage above the hard threshold.
	WarningWasteVeryHigh WarningCode = "waste_very_high"
)

// Warning never blocks a computation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
}

// WastePolicy bounds the waste percentage. Above Max is an error; above Hard
// or Soft produces a warning. Zero fields fall back to the defaults.
type WastePolicy struct {
	Soft numeric.Rational
	Hard numeric.Rational
	Max  numeric.Rational
}

// DefaultWastePolicy returns the 50 % / 200 % / 10,000 % thresholds.
func DefaultWastePolicy() WastePolicy {
	return WastePolicy{
		Soft: numeric.FromInt(50),
		Hard: numeric.FromInt(200),
		Max:  numeric.FromInt(10000),
	}
}

func (p WastePolicy) resolved() WastePolicy {
	def := DefaultWastePolicy()
	if p.Soft.IsZero() {
		p.Soft = def.Soft
	}
	if p.Hard.IsZero() {
		p.Hard = def.Hard
	}
	if p.Max.IsZero() {
		p.Max = def.Max
	}
	return p
}

// Check validates percent and returns any advisory warnings.
func (p WastePolicy) Check(percent numeric.Rational) ([]Warning, error) {
	p = p.resolved()
	if percent.Sign() < 0 {
		return nil, errs.New("waste", errs.CodeNegativeNotAllowed,
			errs.WithMessage("waste percentage cannot be negative"))
	}
	if percent.Cmp(p.Max) > 0 {
		return nil, errs.New("waste", errs.CodeTooLarge,
			errs.WithMessage("waste percentage must be at most "+p.Max.ToDecimalString(2, true)+"%"))
	}
	switch {
	case percent.Cmp(p.Hard) > 0:
		return []Warning{{
			Code:    WarningWasteVeryHigh,
			Field:   "waste",
			Message: "waste above " + p.Hard.ToDecimalString(2, true) + "% is unusually high; double-check the value",
		}}, nil
	case percent.Cmp(p.Soft) > 0:
		return []Warning{{
			Code:    WarningWasteHigh,
			Field:   "waste",
			Message: "waste above " + p.Soft.ToDecimalString(2, true) + "% is higher than typical",
		}}, nil
	default:
		return nil, nil
	}
}

// PriceBasis names what a unit price is charged per.
type PriceBasis string

const (
	// PricePerBag charges per bag bought.
	PricePerBag PriceBasis = "per_bag"
	// PricePerVolume charges per unit of bulk volume.
	PricePerVolume PriceBasis = "per_volume"
	// PricePerUnit charges per coverage product unit (gallon, can, litre tin).
	PricePerUnit PriceBasis = "per_unit"
)

// ParsePriceBasis resolves a basis tag.
func ParsePriceBasis(tag string) (PriceBasis, error) {
	switch PriceBasis(tag) {
	case PricePerBag, PricePerVolume, PricePerUnit:
		return PriceBasis(tag), nil
	default:
		return "", errs.New("priceBasis", errs.CodeInvalid,
			errs.WithMessage("price basis must be per_bag, per_volume or per_unit"))
	}
}

// Pricing attaches a unit price to an estimate.
type Pricing struct {
	UnitPrice  numeric.Rational
	Basis      PriceBasis
	VolumeUnit units.Volume
}

// Cost is the price of the purchasable quantity (Amount) and of the exact,
// unrounded quantity (Exact). Neither is rounded.
type Cost struct {
	Amount numeric.Rational
	Exact  numeric.Rational
	Basis  PriceBasis
}

func (p *Pricing) validate(hasBag, coverage bool) error {
	if p == nil {
		return nil
	}
	if p.UnitPrice.Sign() < 0 {
		return errs.New("unitPrice", errs.CodeNegativeNotAllowed,
			errs.WithMessage("price cannot be negative"))
	}
	switch p.Basis {
	case PricePerUnit:
		if !coverage {
			return errs.New("priceBasis", errs.CodeInvalid,
				errs.WithMessage("per-unit pricing applies to coverage products"))
		}
	case PricePerBag:
		if coverage || !hasBag {
			return errs.New("priceBasis", errs.CodeInvalid,
				errs.WithMessage("per-bag pricing needs a bag size"))
		}
	case PricePerVolume:
		if coverage {
			return errs.New("priceBasis", errs.CodeInvalid,
				errs.WithMessage("per-volume pricing applies to volume products"))
		}
		if !p.VolumeUnit.Valid() {
			return errs.New("priceVolumeUnit", errs.CodeUnknownUnit,
				errs.WithMessage("unknown unit "+p.VolumeUnit.String()))
		}
	default:
		return errs.New("priceBasis", errs.CodeInvalid,
			errs.WithMessage("price basis must be per_bag, per_volume or per_unit"))
	}
	return nil
}

func (p *Pricing) cost(purchasable, exact numeric.Rational) Cost {
	return Cost{
		Amount: p.UnitPrice.Mul(purchasable),
		Exact:  p.UnitPrice.Mul(exact),
		Basis:  p.Basis,
	}
}
