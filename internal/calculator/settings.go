package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/coachpo/materialcalc/internal/display"
	"github.com/coachpo/materialcalc/internal/estimate"
	"github.com/coachpo/materialcalc/internal/geometry"
	"github.com/coachpo/materialcalc/internal/infra/config"
	"github.com/coachpo/materialcalc/internal/numeric"
	"github.com/coachpo/materialcalc/internal/units"
)

// Settings is the explicit, caller-owned state every computation reads.
type Settings struct {
	Pi           numeric.Rational
	Display      display.Options
	Money        display.Options
	MaxMagnitude numeric.Scaled
	Waste        estimate.WastePolicy
	Catalog      *Catalog
}

// DefaultSettings uses the 6-decimal π, two-decimal grouped display and the
// built-in material presets.
func DefaultSettings() Settings {
	return Settings{
		Pi:           geometry.Pi6,
		Display:      display.DefaultOptions(),
		Money:        display.Options{Round: true, Decimals: 2, Group: true},
		MaxMagnitude: numeric.DefaultMaxMagnitude,
		Waste:        estimate.DefaultWastePolicy(),
		Catalog:      DefaultCatalog(),
	}
}

// SettingsFromConfig builds Settings from validated application config.
// Configured materials replace built-in presets of the same name.
func SettingsFromConfig(cfg config.AppConfig) (Settings, error) {
	settings := DefaultSettings()
	calc := cfg.Calculator

	if calc.PiPrecision == config.PiHigh {
		settings.Pi = geometry.PiHigh
	}
	settings.Display = display.Options{
		Round:    calc.RoundForDisplay,
		Decimals: calc.Decimals,
		Group:    calc.GroupThousands,
	}
	settings.Money.Group = calc.GroupThousands

	maxMagnitude, err := rationalSetting("maxMagnitude", calc.MaxMagnitude)
	if err != nil {
		return Settings{}, err
	}
	settings.MaxMagnitude = maxMagnitude.ToScaled()

	if settings.Waste.Soft, err = rationalSetting("wasteSoftPercent", calc.WasteSoftPercent); err != nil {
		return Settings{}, err
	}
	if settings.Waste.Hard, err = rationalSetting("wasteHardPercent", calc.WasteHardPercent); err != nil {
		return Settings{}, err
	}
	if settings.Waste.Max, err = rationalSetting("wasteMaxPercent", calc.WasteMaxPercent); err != nil {
		return Settings{}, err
	}

	if len(cfg.Materials) > 0 {
		overrides := make([]Material, 0, len(cfg.Materials))
		for _, mc := range cfg.Materials {
			m, err := materialFromConfig(mc)
			if err != nil {
				return Settings{}, err
			}
			overrides = append(overrides, m)
		}
		catalog, err := settings.Catalog.Merge(overrides)
		if err != nil {
			return Settings{}, err
		}
		settings.Catalog = catalog
	}
	return settings, nil
}

func rationalSetting(field, value string) (numeric.Rational, error) {
	if strings.TrimSpace(value) == "" {
		return numeric.Rational{}, nil
	}
	d, err := config.ParseDecimal(field, value)
	if err != nil {
		return numeric.Rational{}, err
	}
	return rationalFromDecimal(d), nil
}

func rationalFromDecimal(d decimal.Decimal) numeric.Rational {
	return numeric.FromRat(d.Rat())
}

func materialFromConfig(mc config.MaterialConfig) (Material, error) {
	kind, err := ParseKind(mc.Calculator)
	if err != nil {
		return Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
	}
	m := Material{
		Name:        mc.Name,
		Calculator:  kind,
		Description: mc.Description,
		Coats:       int64(mc.Coats),
	}
	if m.Depth, err = rationalSetting("depth", mc.Depth); err != nil {
		return Material{}, err
	}
	if m.BagSize, err = rationalSetting("bagSize", mc.BagSize); err != nil {
		return Material{}, err
	}
	if m.CoverageRate, err = rationalSetting("coverageRate", mc.CoverageRate); err != nil {
		return Material{}, err
	}
	if m.WastePercent, err = rationalSetting("wastePercent", mc.WastePercent); err != nil {
		return Material{}, err
	}
	if mc.DepthUnit != "" {
		if m.DepthUnit, err = units.ParseLinear(mc.DepthUnit); err != nil {
			return Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
		}
	}
	if mc.BagUnit != "" {
		if m.BagUnit, err = units.ParseVolume(mc.BagUnit); err != nil {
			return Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
		}
	}
	if mc.RateUnit != "" {
		if m.RateUnit, err = units.ParseArea(mc.RateUnit); err != nil {
			return Material{}, fmt.Errorf("material %q: %w", mc.Name, err)
		}
	}
	return m, nil
}
