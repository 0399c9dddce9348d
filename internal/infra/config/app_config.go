// Package config manages application configuration loading and validation.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvVar overrides the configured environment when set.
const EnvVar = "MATERIALCALC_ENV"

// APIServerConfig configures the HTTP surface.
type APIServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
	MaxBatchSize      int           `yaml:"maxBatchSize"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes"`
}

// RateLimitConfig sizes the per-process token bucket guarding the API.
// A zero RequestsPerSecond disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// TelemetryConfig configures OTLP exporters (metrics only).
type TelemetryConfig struct {
	OTLPEndpoint  string `yaml:"otlpEndpoint"`
	ServiceName   string `yaml:"serviceName"`
	OTLPInsecure  bool   `yaml:"otlpInsecure"`
	EnableMetrics bool   `yaml:"enableMetrics"`
}

// Pi precision choices.
const (
	PiStandard = "standard"
	PiHigh     = "high"
)

// CalculatorConfig holds the settings every calculator shares. Decimal
// values are strings so they survive YAML without float conversion.
type CalculatorConfig struct {
	RoundForDisplay  bool   `yaml:"roundForDisplay"`
	Decimals         int    `yaml:"decimals"`
	GroupThousands   bool   `yaml:"groupThousands"`
	MaxMagnitude     string `yaml:"maxMagnitude"`
	WasteSoftPercent string `yaml:"wasteSoftPercent"`
	WasteHardPercent string `yaml:"wasteHardPercent"`
	WasteMaxPercent  string `yaml:"wasteMaxPercent"`
	PiPrecision      string `yaml:"piPrecision"`
}

// MaterialConfig adds or overrides a calculator preset.
type MaterialConfig struct {
	Name         string `yaml:"name"`
	Calculator   string `yaml:"calculator"`
	Description  string `yaml:"description"`
	Depth        string `yaml:"depth"`
	DepthUnit    string `yaml:"depthUnit"`
	BagSize      string `yaml:"bagSize"`
	BagUnit      string `yaml:"bagUnit"`
	CoverageRate string `yaml:"coverageRate"`
	RateUnit     string `yaml:"rateUnit"`
	Coats        int    `yaml:"coats"`
	WastePercent string `yaml:"wastePercent"`
}

// AppConfig is the unified application configuration sourced from YAML.
type AppConfig struct {
	Environment Environment      `yaml:"environment"`
	APIServer   APIServerConfig  `yaml:"apiServer"`
	RateLimit   RateLimitConfig  `yaml:"rateLimit"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Calculator  CalculatorConfig `yaml:"calculator"`
	Materials   []MaterialConfig `yaml:"materials"`
}

// DefaultAppConfig returns the configuration used when no file is supplied.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Environment: EnvDev,
		APIServer: APIServerConfig{
			Addr:              ":8880",
			ReadHeaderTimeout: 5 * time.Second,
			MaxBatchSize:      64,
			MaxBodyBytes:      1 << 20,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint:  "http://localhost:4318",
			ServiceName:   "materialcalc",
			OTLPInsecure:  true,
			EnableMetrics: false,
		},
		Calculator: CalculatorConfig{
			RoundForDisplay:  true,
			Decimals:         2,
			GroupThousands:   true,
			MaxMagnitude:     "1000000000",
			WasteSoftPercent: "50",
			WasteHardPercent: "200",
			WasteMaxPercent:  "10000",
			PiPrecision:      PiStandard,
		},
		Materials: nil,
	}
}

// Load reads and validates an AppConfig from the provided YAML file. Keys
// absent from the file keep their DefaultAppConfig values.
func Load(ctx context.Context, configPath string) (AppConfig, error) {
	_ = ctx

	reader, closer, err := openConfigFile(configPath)
	if err != nil {
		return AppConfig{}, err
	}
	defer closer()

	bytes, err := io.ReadAll(reader)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultAppConfig()
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return finish(cfg)
}

// LoadOrDefault loads configPath, or the defaults when configPath is empty.
func LoadOrDefault(ctx context.Context, configPath string) (AppConfig, error) {
	if strings.TrimSpace(configPath) == "" {
		return finish(DefaultAppConfig())
	}
	return Load(ctx, configPath)
}

func finish(cfg AppConfig) (AppConfig, error) {
	if env := strings.TrimSpace(os.Getenv(EnvVar)); env != "" {
		cfg.Environment = Environment(env)
	}
	if err := cfg.normalise(); err != nil {
		return AppConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalise() error {
	c.Environment = Environment(strings.ToLower(strings.TrimSpace(string(c.Environment))))
	c.APIServer.Addr = strings.TrimSpace(c.APIServer.Addr)
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)

	if c.APIServer.ReadHeaderTimeout <= 0 {
		c.APIServer.ReadHeaderTimeout = 5 * time.Second
	}
	if c.APIServer.MaxBatchSize <= 0 {
		c.APIServer.MaxBatchSize = 64
	}
	if c.APIServer.MaxBodyBytes <= 0 {
		c.APIServer.MaxBodyBytes = 1 << 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}

	c.Calculator.PiPrecision = strings.ToLower(strings.TrimSpace(c.Calculator.PiPrecision))
	if c.Calculator.PiPrecision == "" {
		c.Calculator.PiPrecision = PiStandard
	}

	seen := make(map[string]struct{}, len(c.Materials))
	for i := range c.Materials {
		m := &c.Materials[i]
		m.Name = normalizeMaterialName(m.Name)
		m.Calculator = strings.ToLower(strings.TrimSpace(m.Calculator))
		if m.Name == "" {
			continue
		}
		if _, exists := seen[m.Name]; exists {
			return fmt.Errorf("duplicate material name %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// Validate performs semantic validation on the configuration.
func (c AppConfig) Validate() error {
	switch c.Environment {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("environment must be one of dev, staging, prod")
	}

	if strings.TrimSpace(c.APIServer.Addr) == "" {
		return fmt.Errorf("apiServer addr required")
	}
	if c.APIServer.MaxBatchSize <= 0 {
		return fmt.Errorf("apiServer maxBatchSize must be >0")
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rateLimit requestsPerSecond must be >= 0")
	}
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		return fmt.Errorf("telemetry serviceName required")
	}

	if err := c.Calculator.validate(); err != nil {
		return fmt.Errorf("calculator: %w", err)
	}
	for i, m := range c.Materials {
		if err := m.validate(); err != nil {
			return fmt.Errorf("materials[%d]: %w", i, err)
		}
	}
	return nil
}

func (c CalculatorConfig) validate() error {
	switch c.Decimals {
	case 0, 2, 4, 6:
	default:
		return fmt.Errorf("decimals must be one of 0, 2, 4, 6")
	}
	switch c.PiPrecision {
	case PiStandard, PiHigh:
	default:
		return fmt.Errorf("piPrecision must be %s or %s", PiStandard, PiHigh)
	}

	maxMagnitude, err := ParseDecimal("maxMagnitude", c.MaxMagnitude)
	if err != nil {
		return err
	}
	if !maxMagnitude.IsPositive() {
		return fmt.Errorf("maxMagnitude must be > 0")
	}

	soft, err := ParseDecimal("wasteSoftPercent", c.WasteSoftPercent)
	if err != nil {
		return err
	}
	hard, err := ParseDecimal("wasteHardPercent", c.WasteHardPercent)
	if err != nil {
		return err
	}
	limit, err := ParseDecimal("wasteMaxPercent", c.WasteMaxPercent)
	if err != nil {
		return err
	}
	if !soft.IsPositive() {
		return fmt.Errorf("wasteSoftPercent must be > 0")
	}
	if soft.GreaterThan(hard) || hard.GreaterThan(limit) {
		return fmt.Errorf("waste thresholds must satisfy soft <= hard <= max")
	}
	return nil
}

func (m MaterialConfig) validate() error {
	if m.Name == "" {
		return fmt.Errorf("name required")
	}
	switch m.Calculator {
	case "area", "volume", "coverage":
	default:
		return fmt.Errorf("material %q: calculator must be area, volume or coverage", m.Name)
	}
	for field, value := range map[string]string{
		"depth":        m.Depth,
		"bagSize":      m.BagSize,
		"coverageRate": m.CoverageRate,
		"wastePercent": m.WastePercent,
	} {
		if strings.TrimSpace(value) == "" {
			continue
		}
		d, err := ParseDecimal(field, value)
		if err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("material %q: %s must be >= 0", m.Name, field)
		}
	}
	if m.Coats < 0 {
		return fmt.Errorf("material %q: coats must be >= 0", m.Name)
	}
	return nil
}

// ParseDecimal reads a decimal setting.
func ParseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q", field, value)
	}
	return d, nil
}

func openConfigFile(path string) (io.Reader, func(), error) {
	candidate := strings.TrimSpace(path)
	candidate = filepath.Clean(candidate)

	file, err := os.Open(candidate) // #nosec G304 -- path is operator controlled.
	if err != nil {
		return nil, nil, fmt.Errorf("open app config: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}
