package calculator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/coachpo/materialcalc/errs"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/observability"
	"github.com/coachpo/materialcalc/internal/units"
)

// Kind selects which estimate a calculator produces.
type Kind string

const (
	// KindArea reports area only.
	KindArea Kind = "area"
	// KindVolume reports depth-based volume and optional bag counts.
	KindVolume Kind = "volume"
	// KindCoverage reports area-per-unit products such as paint.
	KindCoverage Kind = "coverage"
)

// ParseKind resolves a calculator kind tag.
func ParseKind(tag string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(tag))); k {
	case KindArea, KindVolume, KindCoverage:
		return k, nil
	default:
		return "", errs.New("calculator", errs.CodeInvalid,
			errs.WithMessage(fmt.Sprintf("unknown calculator %q", tag)),
			errs.WithRemediation("use area, volume or coverage"))
	}
}

// Material is a calculator preset. Zero-valued fields carry no default and
// must be supplied by the caller.
type Material struct {
	Name         string
	Calculator   Kind
	Description  string
	Depth        numeric.Rational
	DepthUnit    units.Linear
	BagSize      numeric.Rational
	BagUnit      units.Volume
	CoverageRate numeric.Rational
	RateUnit     units.Area
	Coats        int64
	WastePercent numeric.Rational
}

// HasBag reports whether the preset sells in bags.
func (m Material) HasBag() bool {
	return m.BagSize.Sign() > 0
}

func (m Material) validate() error {
	var problems []error
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, fmt.Errorf("material name required"))
	}
	if _, err := ParseKind(string(m.Calculator)); err != nil {
		problems = append(problems, fmt.Errorf("material %q: calculator must be area, volume or coverage", m.Name))
	}
	if m.Depth.Sign() < 0 || m.BagSize.Sign() < 0 || m.CoverageRate.Sign() < 0 || m.WastePercent.Sign() < 0 {
		problems = append(problems, fmt.Errorf("material %q: defaults cannot be negative", m.Name))
	}
	if m.DepthUnit != "" && !m.DepthUnit.Valid() {
		problems = append(problems, fmt.Errorf("material %q: unknown depth unit %q", m.Name, m.DepthUnit))
	}
	if m.BagUnit != "" && !m.BagUnit.Valid() {
		problems = append(problems, fmt.Errorf("material %q: unknown bag unit %q", m.Name, m.BagUnit))
	}
	if m.RateUnit != "" && !m.RateUnit.Valid() {
		problems = append(problems, fmt.Errorf("material %q: unknown rate unit %q", m.Name, m.RateUnit))
	}
	if m.Coats < 0 {
		problems = append(problems, fmt.Errorf("material %q: coats cannot be negative", m.Name))
	}
	return errors.Join(problems...)
}

// DefaultMaterials returns the built-in presets.
func DefaultMaterials() []Material {
	return []Material{
		{
			Name:        "area",
			Calculator:  KindArea,
			Description: "Area of a surface in several units",
		},
		{
			Name:         "paint",
			Calculator:   KindCoverage,
			Description:  "Paint or primer by spread rate and coats",
			CoverageRate: numeric.FromInt(350),
			RateUnit:     units.SquareFoot,
			Coats:        2,
			WastePercent: numeric.FromInt(10),
		},
		{
			Name:         "mulch",
			Calculator:   KindVolume,
			Description:  "Bark or wood mulch",
			Depth:        numeric.FromInt(3),
			DepthUnit:    units.Inch,
			BagSize:      numeric.FromInt(2),
			BagUnit:      units.CubicFoot,
			WastePercent: numeric.FromInt(10),
		},
		{
			Name:         "gravel",
			Calculator:   KindVolume,
			Description:  "Gravel and crushed stone",
			Depth:        numeric.FromInt(2),
			DepthUnit:    units.Inch,
			BagSize:      numeric.NewRational(1, 2),
			BagUnit:      units.CubicFoot,
			WastePercent: numeric.FromInt(5),
		},
		{
			Name:         "topsoil",
			Calculator:   KindVolume,
			Description:  "Topsoil and garden soil",
			Depth:        numeric.FromInt(4),
			DepthUnit:    units.Inch,
			BagSize:      numeric.NewRational(3, 4),
			BagUnit:      units.CubicFoot,
			WastePercent: numeric.FromInt(10),
		},
		{
			Name:         "compost",
			Calculator:   KindVolume,
			Description:  "Compost top dressing",
			Depth:        numeric.FromInt(2),
			DepthUnit:    units.Inch,
			BagSize:      numeric.FromInt(1),
			BagUnit:      units.CubicFoot,
			WastePercent: numeric.FromInt(5),
		},
	}
}

// Catalog is an immutable, case-insensitive set of presets.
type Catalog struct {
	byName map[string]Material
}

func catalogKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewCatalog validates materials and indexes them by name.
func NewCatalog(materials []Material) (*Catalog, error) {
	byName := make(map[string]Material, len(materials))
	var problems []error
	for _, m := range materials {
		if err := m.validate(); err != nil {
			problems = append(problems, err)
			continue
		}
		key := catalogKey(m.Name)
		if _, exists := byName[key]; exists {
			problems = append(problems, fmt.Errorf("duplicate material name %q", key))
			continue
		}
		m.Name = key
		byName[key] = m
	}
	if err := observability.AggregateErrors("material catalog", problems); err != nil {
		return nil, err
	}
	return &Catalog{byName: byName}, nil
}

// DefaultCatalog indexes DefaultMaterials.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(DefaultMaterials())
	if err != nil {
		panic(err)
	}
	return catalog
}

// Merge returns a new catalog where overrides replace presets of the same name.
func (c *Catalog) Merge(overrides []Material) (*Catalog, error) {
	seen := make(map[string]struct{}, len(overrides))
	merged := make([]Material, 0, len(c.byName)+len(overrides))
	for _, m := range overrides {
		seen[catalogKey(m.Name)] = struct{}{}
		merged = append(merged, m)
	}
	for key, m := range c.byName {
		if _, replaced := seen[key]; !replaced {
			merged = append(merged, m)
		}
	}
	return NewCatalog(merged)
}

// Lookup finds a preset by name.
func (c *Catalog) Lookup(name string) (Material, error) {
	if m, ok := c.byName[catalogKey(name)]; ok {
		return m, nil
	}
	return Material{}, errs.New("material", errs.CodeUnknownMaterial,
		errs.WithMessage(fmt.Sprintf("unknown material %q", name)),
		errs.WithDetail("accepted", strings.Join(c.Names(), ",")))
}

// Names lists preset names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the presets sorted by name.
func (c *Catalog) List() []Material {
	names := c.Names()
	out := make([]Material, 0, len(names))
	for _, name := range names {
		out = append(out, c.byName[name])
	}
	return out
}
