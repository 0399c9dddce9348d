// Package calculator is the boundary consumed by presentation layers: raw
// field text and unit selections go in, a discriminated Outcome comes out.
// Fields are validated in a fixed order and the first failure is reported.
package calculator

import (
	"errors"
	"strings"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/estimate"
	"github.com/coachpo/materialcalc/internal/geometry"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// Input carries the raw text of every field a calculator page can submit.
// Empty fields fall back to the selected material's defaults.
type Input struct {
	Calculator      string            `json:"calculator,omitempty"`
	Material        string            `json:"material,omitempty"`
	Shape           string            `json:"shape"`
	Dimensions      map[string]string `json:"dimensions"`
	LengthUnit      string            `json:"lengthUnit,omitempty"`
	Depth           string            `json:"depth,omitempty"`
	DepthUnit       string            `json:"depthUnit,omitempty"`
	Waste           string            `json:"waste,omitempty"`
	Coats           string            `json:"coats,omitempty"`
	CoverageRate    string            `json:"coverageRate,omitempty"`
	RateAreaUnit    string            `json:"rateAreaUnit,omitempty"`
	BagSize         string            `json:"bagSize,omitempty"`
	BagUnit         string            `json:"bagUnit,omitempty"`
	UnitPrice       string            `json:"unitPrice,omitempty"`
	PriceBasis      string            `json:"priceBasis,omitempty"`
	PriceVolumeUnit string            `json:"priceVolumeUnit,omitempty"`
	AreaUnit        string            `json:"areaUnit,omitempty"`
	VolumeUnit      string            `json:"volumeUnit,omitempty"`
}

// Failure is a validation error keyed to the offending field.
type Failure struct {
	Field   string    `json:"field"`
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// Outcome is either a Failure or a Result.
type Outcome struct {
	Valid    bool               `json:"valid"`
	Failure  *Failure           `json:"failure,omitempty"`
	Result   *Payload           `json:"result,omitempty"`
	Warnings []estimate.Warning `json:"warnings,omitempty"`
}

// Calculator evaluates Inputs against fixed Settings. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	settings Settings
	engine   geometry.Engine
}

// New builds a Calculator. Nil catalogs fall back to the built-in presets.
func New(settings Settings) *Calculator {
	if settings.Catalog == nil {
		settings.Catalog = DefaultCatalog()
	}
	return &Calculator{settings: settings, engine: geometry.NewEngine(settings.Pi)}
}

// Settings returns the settings the calculator was built with.
func (c *Calculator) Settings() Settings {
	return c.settings
}

// Catalog returns the material presets.
func (c *Calculator) Catalog() *Catalog {
	return c.settings.Catalog
}

// Compute validates in and produces an Outcome. It never panics on user input.
func (c *Calculator) Compute(in Input) Outcome {
	payload, warnings, err := c.compute(in)
	if err != nil {
		return Outcome{Valid: false, Failure: failureFrom(err), Result: nil, Warnings: nil}
	}
	return Outcome{Valid: true, Failure: nil, Result: payload, Warnings: warnings}
}

type request struct {
	kind     Kind
	material Material
	shape    geometry.Shape
	areaUnit units.Area
	volUnit  units.Volume
}

func (c *Calculator) compute(in Input) (*Payload, []estimate.Warning, error) {
	req, err := c.resolveCommon(in)
	if err != nil {
		return nil, nil, err
	}
	areaSqFt, err := c.engine.Area(req.shape)
	if err != nil {
		return nil, nil, err
	}

	p := c.newPayload(req, areaSqFt)
	switch req.kind {
	case KindArea:
		return p, nil, nil
	case KindVolume:
		result, err := c.volume(in, req, areaSqFt)
		if err != nil {
			return nil, nil, err
		}
		c.fillVolume(p, req, result)
		return p, result.Warnings, nil
	case KindCoverage:
		result, err := c.coverage(in, req, areaSqFt)
		if err != nil {
			return nil, nil, err
		}
		c.fillCoverage(p, result)
		return p, result.Warnings, nil
	}
	return nil, nil, errs.New("calculator", errs.CodeInvalid, errs.WithMessage("unsupported calculator"))
}

func (c *Calculator) resolveCommon(in Input) (request, error) {
	var req request

	if strings.TrimSpace(in.Material) != "" {
		m, err := c.settings.Catalog.Lookup(in.Material)
		if err != nil {
			return req, err
		}
		req.material = m
		req.kind = m.Calculator
	}
	if strings.TrimSpace(in.Calculator) != "" {
		kind, err := ParseKind(in.Calculator)
		if err != nil {
			return req, err
		}
		if req.kind != "" && req.kind != kind {
			return req, errs.New("calculator", errs.CodeInvalid,
				errs.WithMessage("material "+req.material.Name+" uses the "+string(req.material.Calculator)+" calculator"))
		}
		req.kind = kind
	}
	if req.kind == "" {
		return req, errs.New("calculator", errs.CodeEmptyInput,
			errs.WithMessage("choose a calculator or material"))
	}

	if strings.TrimSpace(in.Shape) == "" {
		return req, errs.New("shape", errs.CodeEmptyInput, errs.WithMessage("choose a shape"))
	}
	shapeKind, err := geometry.ParseKind(in.Shape)
	if err != nil {
		return req, err
	}
	lengthUnit, err := linearUnit("lengthUnit", in.LengthUnit, units.Foot)
	if err != nil {
		return req, err
	}
	if req.areaUnit, err = areaUnit("areaUnit", in.AreaUnit, units.SquareFoot); err != nil {
		return req, err
	}
	if req.volUnit, err = volumeUnit("volumeUnit", in.VolumeUnit, units.CubicYard); err != nil {
		return req, err
	}

	dims := make(map[string]numeric.Rational, len(geometry.Fields(shapeKind)))
	for _, field := range geometry.Fields(shapeKind) {
		v, err := c.positive(field, in.Dimensions[field])
		if err != nil {
			return req, err
		}
		dims[field] = v
	}
	req.shape, err = geometry.Build(shapeKind, dims, lengthUnit)
	return req, err
}

func (c *Calculator) volume(in Input, req request, areaSqFt numeric.Rational) (estimate.Result, error) {
	m := req.material

	depthUnit, err := linearUnit("depthUnit", in.DepthUnit, orDefault(m.DepthUnit, units.Inch))
	if err != nil {
		return estimate.Result{}, err
	}
	depth, err := c.positiveOr("depth", in.Depth, m.Depth)
	if err != nil {
		return estimate.Result{}, err
	}
	waste, err := c.nonNegativeOr("waste", in.Waste, m.WastePercent)
	if err != nil {
		return estimate.Result{}, err
	}

	var bag *estimate.Bag
	if strings.TrimSpace(in.BagSize) != "" || m.HasBag() {
		bagUnit, err := volumeUnit("bagUnit", in.BagUnit, orDefault(m.BagUnit, units.CubicFoot))
		if err != nil {
			return estimate.Result{}, err
		}
		size, err := c.positiveOr("bagSize", in.BagSize, m.BagSize)
		if err != nil {
			return estimate.Result{}, err
		}
		bag = &estimate.Bag{Size: size, Unit: bagUnit}
	}

	defaultBasis := estimate.PricePerVolume
	if bag != nil {
		defaultBasis = estimate.PricePerBag
	}
	price, err := c.pricing(in, defaultBasis, req.volUnit)
	if err != nil {
		return estimate.Result{}, err
	}

	return estimate.Estimate(estimate.Request{
		Area:         areaSqFt,
		AreaUnit:     units.SquareFoot,
		Depth:        depth,
		DepthUnit:    depthUnit,
		WastePercent: waste,
		Bag:          bag,
		Price:        price,
		Waste:        c.settings.Waste,
	})
}

func (c *Calculator) coverage(in Input, req request, areaSqFt numeric.Rational) (estimate.CoverageResult, error) {
	m := req.material

	rateUnit, err := areaUnit("rateAreaUnit", in.RateAreaUnit, orDefault(m.RateUnit, units.SquareFoot))
	if err != nil {
		return estimate.CoverageResult{}, err
	}
	rate, err := c.positiveOr("coverageRate", in.CoverageRate, m.CoverageRate)
	if err != nil {
		return estimate.CoverageResult{}, err
	}
	coats, err := c.coats(in.Coats, m.Coats)
	if err != nil {
		return estimate.CoverageResult{}, err
	}
	waste, err := c.nonNegativeOr("waste", in.Waste, m.WastePercent)
	if err != nil {
		return estimate.CoverageResult{}, err
	}
	price, err := c.pricing(in, estimate.PricePerUnit, req.volUnit)
	if err != nil {
		return estimate.CoverageResult{}, err
	}

	return estimate.Coverage(estimate.CoverageRequest{
		Area:         areaSqFt,
		AreaUnit:     units.SquareFoot,
		Rate:         rate,
		RateUnit:     rateUnit,
		Coats:        coats,
		WastePercent: waste,
		Price:        price,
		Waste:        c.settings.Waste,
	})
}

func (c *Calculator) pricing(in Input, defaultBasis estimate.PriceBasis, volUnit units.Volume) (*estimate.Pricing, error) {
	if strings.TrimSpace(in.UnitPrice) == "" {
		return nil, nil
	}
	price, err := c.parse("unitPrice", in.UnitPrice, numeric.Constraints{
		Max:             c.settings.MaxMagnitude,
		StrictMoney:     true,
		RequirePositive: false,
	})
	if err != nil {
		return nil, err
	}
	basis := defaultBasis
	if strings.TrimSpace(in.PriceBasis) != "" {
		if basis, err = estimate.ParsePriceBasis(strings.TrimSpace(in.PriceBasis)); err != nil {
			return nil, err
		}
	}
	priceUnit, err := volumeUnit("priceVolumeUnit", in.PriceVolumeUnit, volUnit)
	if err != nil {
		return nil, err
	}
	return &estimate.Pricing{UnitPrice: price, Basis: basis, VolumeUnit: priceUnit}, nil
}

func (c *Calculator) coats(text string, fallback int64) (int64, error) {
	if strings.TrimSpace(text) == "" {
		if fallback > 0 {
			return fallback, nil
		}
		return 1, nil
	}
	value, err := numeric.ParseRational(text, numeric.Constraints{
		Max:             c.settings.MaxMagnitude,
		StrictMoney:     false,
		RequirePositive: false,
	})
	if err != nil {
		return 0, errs.New("coats", errs.CodeInvalidCoats,
			errs.WithMessage("coats must be a whole number of at least 1"),
			errs.WithDetail("input", text),
			errs.WithCause(err))
	}
	return estimate.Coats(value)
}

func (c *Calculator) parse(field, text string, constraints numeric.Constraints) (numeric.Rational, error) {
	v, err := numeric.ParseRational(text, constraints)
	if err != nil {
		return numeric.Rational{}, rekey(err, field)
	}
	return v, nil
}

func (c *Calculator) positive(field, text string) (numeric.Rational, error) {
	return c.parse(field, text, numeric.Constraints{
		Max:             c.settings.MaxMagnitude,
		StrictMoney:     false,
		RequirePositive: true,
	})
}

func (c *Calculator) positiveOr(field, text string, fallback numeric.Rational) (numeric.Rational, error) {
	if strings.TrimSpace(text) == "" && fallback.Sign() > 0 {
		return fallback, nil
	}
	return c.positive(field, text)
}

func (c *Calculator) nonNegativeOr(field, text string, fallback numeric.Rational) (numeric.Rational, error) {
	if strings.TrimSpace(text) == "" {
		return fallback, nil
	}
	return c.parse(field, text, numeric.Constraints{
		Max:             c.settings.MaxMagnitude,
		StrictMoney:     false,
		RequirePositive: false,
	})
}

func rekey(err error, field string) error {
	var e *errs.E
	if errors.As(err, &e) {
		return e.InField(field)
	}
	return err
}

func orDefault[U ~string](configured, fallback U) U {
	if configured != "" {
		return configured
	}
	return fallback
}

func linearUnit(field, tag string, fallback units.Linear) (units.Linear, error) {
	if strings.TrimSpace(tag) == "" {
		return fallback, nil
	}
	u, err := units.ParseLinear(tag)
	if err != nil {
		return "", rekey(err, field)
	}
	return u, nil
}

func areaUnit(field, tag string, fallback units.Area) (units.Area, error) {
	if strings.TrimSpace(tag) == "" {
		return fallback, nil
	}
	u, err := units.ParseArea(tag)
	if err != nil {
		return "", rekey(err, field)
	}
	return u, nil
}

func volumeUnit(field, tag string, fallback units.Volume) (units.Volume, error) {
	if strings.TrimSpace(tag) == "" {
		return fallback, nil
	}
	u, err := units.ParseVolume(tag)
	if err != nil {
		return "", rekey(err, field)
	}
	return u, nil
}

func failureFrom(err error) *Failure {
	var e *errs.E
	if errors.As(err, &e) {
		msg := e.Message
		if msg == "" {
			msg = string(e.Code)
		}
		return &Failure{Field: e.Field, Code: e.Code, Message: msg}
	}
	return &Failure{Field: "", Code: errs.CodeInvalid, Message: err.Error()}
}
