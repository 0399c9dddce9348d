package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when config file missing")
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, `
environment: STAGING
apiServer:
  addr: ":9999"
  readHeaderTimeout: 2s
rateLimit:
  requestsPerSecond: 10
  burst: 20
telemetry:
  otlpEndpoint: http://collector:4318
  serviceName: calc-test
  enableMetrics: true
calculator:
  roundForDisplay: false
  decimals: 4
  piPrecision: HIGH
  wasteSoftPercent: "25"
materials:
  - name: " Pea Gravel "
    calculator: volume
    depth: "1.5"
    depthUnit: in
    bagSize: "0.5"
    bagUnit: ft3
    wastePercent: "5"
`)

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != EnvStaging {
		t.Fatalf("expected environment %s, got %s", EnvStaging, cfg.Environment)
	}
	if cfg.APIServer.Addr != ":9999" {
		t.Fatalf("expected api server addr :9999, got %s", cfg.APIServer.Addr)
	}
	if cfg.APIServer.ReadHeaderTimeout != 2*time.Second {
		t.Fatalf("expected read header timeout 2s, got %s", cfg.APIServer.ReadHeaderTimeout)
	}
	if cfg.APIServer.MaxBatchSize != 64 {
		t.Fatalf("expected default batch size 64, got %d", cfg.APIServer.MaxBatchSize)
	}
	if cfg.RateLimit.RequestsPerSecond != 10 || cfg.RateLimit.Burst != 20 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if cfg.Telemetry.ServiceName != "calc-test" || !cfg.Telemetry.EnableMetrics {
		t.Fatalf("unexpected telemetry %+v", cfg.Telemetry)
	}
	if cfg.Calculator.RoundForDisplay {
		t.Fatalf("expected rounding disabled")
	}
	if cfg.Calculator.Decimals != 4 {
		t.Fatalf("expected decimals 4, got %d", cfg.Calculator.Decimals)
	}
	if cfg.Calculator.PiPrecision != PiHigh {
		t.Fatalf("expected pi precision %s, got %s", PiHigh, cfg.Calculator.PiPrecision)
	}
	if cfg.Calculator.WasteSoftPercent != "25" || cfg.Calculator.WasteHardPercent != "200" {
		t.Fatalf("expected partial waste override, got %+v", cfg.Calculator)
	}
	if len(cfg.Materials) != 1 || cfg.Materials[0].Name != "pea gravel" {
		t.Fatalf("expected normalised material name, got %+v", cfg.Materials)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.APIServer.Addr != ":8880" {
		t.Fatalf("expected default addr, got %q", cfg.APIServer.Addr)
	}
	if cfg.Calculator.Decimals != 2 || !cfg.Calculator.RoundForDisplay {
		t.Fatalf("unexpected calculator defaults %+v", cfg.Calculator)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv(EnvVar, "Prod")
	cfg, err := LoadOrDefault(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Environment != EnvProd {
		t.Fatalf("expected prod environment, got %s", cfg.Environment)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"environment": {
			body: "environment: qa\n",
			want: "environment must be one of",
		},
		"decimals": {
			body: "calculator:\n  decimals: 3\n",
			want: "decimals must be one of",
		},
		"pi": {
			body: "calculator:\n  piPrecision: exact\n",
			want: "piPrecision",
		},
		"magnitude": {
			body: "calculator:\n  maxMagnitude: lots\n",
			want: "maxMagnitude: invalid decimal",
		},
		"waste order": {
			body: "calculator:\n  wasteSoftPercent: \"300\"\n",
			want: "soft <= hard <= max",
		},
		"material calculator": {
			body: "materials:\n  - name: sand\n    calculator: weight\n",
			want: `material "sand": calculator must be`,
		},
		"material negative": {
			body: "materials:\n  - name: sand\n    calculator: volume\n    depth: \"-1\"\n",
			want: "depth must be >= 0",
		},
		"duplicate material": {
			body: "materials:\n  - name: Sand\n    calculator: volume\n  - name: sand\n    calculator: volume\n",
			want: `duplicate material name "sand"`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(context.Background(), writeConfig(t, tc.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("x", " 12.50 ")
	if err != nil {
		t.Fatalf("ParseDecimal failed: %v", err)
	}
	if d.String() != "12.5" {
		t.Fatalf("expected 12.5, got %s", d.String())
	}
	if _, err := ParseDecimal("x", "1,5"); err == nil {
		t.Fatalf("expected error for comma decimal")
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(context.Background(), filepath.Join("..", "..", "..", "config", "app.example.yaml"))
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	if len(cfg.Materials) != 2 || cfg.Materials[0].Name != "pea-gravel" {
		t.Fatalf("unexpected materials %+v", cfg.Materials)
	}
	if cfg.RateLimit.Burst != 100 {
		t.Fatalf("expected burst 100, got %d", cfg.RateLimit.Burst)
	}
}
