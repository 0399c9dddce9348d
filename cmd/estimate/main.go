// Command estimate computes a single material estimate from flags and prints
// the outcome as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/coachpo/materialcalc/internal/calculator"
	"github.com/coachpo/materialcalc/internal/infra/config"
	"github.com/coachpo/materialcalc/internal/telemetry"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type dimensionFlag map[string]string

func (d dimensionFlag) String() string {
	parts := make([]string, 0, len(d))
	for k, v := range d {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (d dimensionFlag) Set(value string) error {
	name, amount, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("dimension must be name=value, got %q", value)
	}
	d[strings.TrimSpace(name)] = amount
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var in calculator.Input
	dims := dimensionFlag{}
	configPath := fs.String("config", "", "Path to application configuration file")
	listMaterials := fs.Bool("materials", false, "List material presets and exit")
	fs.StringVar(&in.Calculator, "calculator", "", "Calculator: area, volume or coverage")
	fs.StringVar(&in.Material, "material", "", "Material preset name")
	fs.StringVar(&in.Shape, "shape", "", "Shape tag, e.g. rectangle or circle_border")
	fs.Var(dims, "dim", "Dimension as name=value; repeatable")
	fs.StringVar(&in.LengthUnit, "length-unit", "", "Unit for dimensions")
	fs.StringVar(&in.Depth, "depth", "", "Depth for volume estimates")
	fs.StringVar(&in.DepthUnit, "depth-unit", "", "Unit for depth")
	fs.StringVar(&in.Waste, "waste", "", "Waste allowance in percent")
	fs.StringVar(&in.Coats, "coats", "", "Number of coats")
	fs.StringVar(&in.CoverageRate, "coverage-rate", "", "Area covered by one unit per coat")
	fs.StringVar(&in.RateAreaUnit, "rate-unit", "", "Area unit of the coverage rate")
	fs.StringVar(&in.BagSize, "bag-size", "", "Volume of one bag")
	fs.StringVar(&in.BagUnit, "bag-unit", "", "Unit of the bag volume")
	fs.StringVar(&in.UnitPrice, "price", "", "Unit price")
	fs.StringVar(&in.PriceBasis, "price-basis", "", "per_bag, per_volume or per_unit")
	fs.StringVar(&in.PriceVolumeUnit, "price-volume-unit", "", "Volume unit a per_volume price refers to")
	fs.StringVar(&in.AreaUnit, "area-unit", "", "Unit for the reported area")
	fs.StringVar(&in.VolumeUnit, "volume-unit", "", "Unit for the reported volume")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	ctx := context.Background()
	appCfg, err := config.LoadOrDefault(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitUsage
	}
	settings, err := calculator.SettingsFromConfig(appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "build calculator settings: %v\n", err)
		return exitUsage
	}
	calc := calculator.New(settings)

	if *listMaterials {
		for _, m := range calc.Catalog().List() {
			fmt.Fprintf(stdout, "%-10s %-9s %s\n", m.Name, m.Calculator, m.Description)
		}
		return exitOK
	}

	in.Dimensions = dims
	telemetry.SetEnvironment(string(appCfg.Environment))
	metrics := telemetry.NewCalculatorMetrics(nil)

	start := time.Now()
	outcome := calc.Compute(in)
	errorType := ""
	calcLabel := ""
	if outcome.Failure != nil {
		errorType = string(outcome.Failure.Code)
	}
	if outcome.Result != nil {
		calcLabel = string(outcome.Result.Calculator)
	}
	metrics.RecordEstimate(ctx, calcLabel, telemetry.TransportCLI, errorType, time.Since(start))

	encoder := json.NewEncoder(stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(outcome); err != nil {
		fmt.Fprintf(stderr, "encode outcome: %v\n", err)
		return exitUsage
	}
	if !outcome.Valid {
		return exitInvalid
	}
	return exitOK
}
