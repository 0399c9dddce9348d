package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/coachpo/materialcalc/internal/display"
	"github.com/coachpo/materialcalc/internal/estimate"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// Quantity pairs the formatted display string with the exact value at the
// 10⁻⁶ scale.
type Quantity struct {
	Display string          `json:"display"`
	Exact   decimal.Decimal `json:"exact"`
	Unit    string          `json:"unit,omitempty"`
}

// Count is a purchasable quantity: the exact ratio and the whole number to buy.
type Count struct {
	Exact Quantity `json:"exact"`
	ToBuy Quantity `json:"toBuy"`
}

// Payload is the success side of an Outcome.
type Payload struct {
	Calculator      Kind       `json:"calculator"`
	Material        string     `json:"material,omitempty"`
	Shape           string     `json:"shape"`
	Area            Quantity   `json:"area"`
	AreaBreakdown   []Quantity `json:"areaBreakdown"`
	RawVolume       *Quantity  `json:"rawVolume,omitempty"`
	Volume          *Quantity  `json:"volume,omitempty"`
	VolumeBreakdown []Quantity `json:"volumeBreakdown,omitempty"`
	Bags            *Count     `json:"bags,omitempty"`
	Coats           int64      `json:"coats,omitempty"`
	Units           *Count     `json:"units,omitempty"`
	Cost            *Quantity  `json:"cost,omitempty"`
	CostExact       *Quantity  `json:"costExact,omitempty"`
}

// ExactDecimal renders s as a decimal with six fractional digits of scale.
func ExactDecimal(s numeric.Scaled) decimal.Decimal {
	return decimal.NewFromBigInt(s.Units(), -numeric.Scale)
}

func quantity(r numeric.Rational, unit string, opts display.Options) Quantity {
	scaled := r.ToScaled()
	return Quantity{Display: display.Format(scaled, opts), Exact: ExactDecimal(scaled), Unit: unit}
}

func (c *Calculator) count(exact, toBuy numeric.Rational) *Count {
	whole := display.Options{Round: true, Decimals: 0, Group: c.settings.Display.Group}
	return &Count{
		Exact: quantity(exact, "", c.settings.Display),
		ToBuy: quantity(toBuy, "", whole),
	}
}

func (c *Calculator) cost(cost *estimate.Cost) (*Quantity, *Quantity) {
	if cost == nil {
		return nil, nil
	}
	amount := quantity(cost.Amount, "", c.settings.Money)
	exact := quantity(cost.Exact, "", c.settings.Money)
	return &amount, &exact
}

func (c *Calculator) newPayload(req request, areaSqFt numeric.Rational) *Payload {
	area := estimate.AreaBreakdown{SquareFeet: areaSqFt}
	breakdown := make([]Quantity, 0, len(estimate.BreakdownAreaUnits))
	for _, u := range estimate.BreakdownAreaUnits {
		breakdown = append(breakdown, quantity(area.In(u), u.String(), c.settings.Display))
	}
	return &Payload{
		Calculator:    req.kind,
		Material:      req.material.Name,
		Shape:         string(req.shape.Kind()),
		Area:          quantity(area.In(req.areaUnit), req.areaUnit.String(), c.settings.Display),
		AreaBreakdown: breakdown,
	}
}

func (c *Calculator) fillVolume(p *Payload, req request, result estimate.Result) {
	raw := quantity(result.Volume.In(req.volUnit), req.volUnit.String(), c.settings.Display)
	withWaste := quantity(result.VolumeWithWaste.In(req.volUnit), req.volUnit.String(), c.settings.Display)
	p.RawVolume = &raw
	p.Volume = &withWaste

	p.VolumeBreakdown = make([]Quantity, 0, len(estimate.BreakdownVolumeUnits))
	for _, u := range estimate.BreakdownVolumeUnits {
		p.VolumeBreakdown = append(p.VolumeBreakdown,
			quantity(result.VolumeWithWaste.In(u), u.String(), c.settings.Display))
	}
	if result.Bags != nil {
		p.Bags = c.count(result.Bags.Exact, result.Bags.ToBuy)
	}
	p.Cost, p.CostExact = c.cost(result.Cost)
}

func (c *Calculator) fillCoverage(p *Payload, result estimate.CoverageResult) {
	p.Coats = result.Coats
	p.Units = c.count(result.UnitsExact, result.UnitsToBuy)
	p.Cost, p.CostExact = c.cost(result.Cost)
}

// UnitTags lists the accepted unit tags per dimension.
func UnitTags() map[string][]string {
	return map[string][]string{
		"linear": tags(units.LinearUnits()),
		"area":   tags(units.AreaUnits()),
		"volume": tags(units.VolumeUnits()),
	}
}

func tags[U units.Unit](list []U) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.String())
	}
	return out
}
