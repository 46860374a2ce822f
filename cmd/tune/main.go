// Package main finds damping factors that settle a camera in a requested
// time, and reports how each damping mode behaves across frame rates.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/config"
)

// tuneRow is one line of tune.csv.
type tuneRow struct {
	Mode      string  `csv:"mode"`
	FPS       int     `csv:"fps"`
	TunedFPS  int     `csv:"tuned_fps"`
	Factor    float64 `csv:"factor"`
	SettleS   float64 `csv:"settle_s"`
	Overshoot float64 `csv:"overshoot"`
	Settled   bool    `csv:"settled"`
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	settle := flag.Float64("settle", 0.5, "Desired settle time in seconds")
	tolerance := flag.Float64("tolerance", 0.02, "Settled when the error is within this fraction of the jump")
	refFPS := flag.Int("ref-fps", 60, "Frame rate the factor is tuned at")
	fpsList := flag.String("fps", "30,60,144", "Comma-separated frame rates to evaluate the tuned factor at")
	maxEvals := flag.Int("max-evals", 200, "Maximum function evaluations per mode")
	outputDir := flag.String("output", "", "Output directory for tune.csv and tuned_config.yaml")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *settle, *tolerance, *refFPS, *fpsList, *maxEvals, *outputDir); err != nil {
		slog.Error("tune failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, settle, tolerance float64, refFPS int, fpsList string, maxEvals int, outputDir string) error {
	if settle <= 0 || refFPS <= 0 {
		return fmt.Errorf("settle and ref-fps must be positive")
	}
	fps, err := parseFPS(fpsList)
	if err != nil {
		return err
	}

	base, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sim := newSimulator(base, 10, tolerance, 20*settle)

	var rows []tuneRow
	tuned := make(map[camera.DampingMode]float64)
	for _, mode := range []camera.DampingMode{camera.DampingLinear, camera.DampingExponential} {
		factor, err := tuneFactor(sim, mode, settle, 1/float64(refFPS), maxEvals)
		if err != nil {
			return fmt.Errorf("tuning %s: %w", mode, err)
		}
		tuned[mode] = factor

		for _, f := range fps {
			resp, err := sim.run(mode, factor, 1/float64(f))
			if err != nil {
				return err
			}
			row := tuneRow{
				Mode:      string(mode),
				FPS:       f,
				TunedFPS:  refFPS,
				Factor:    factor,
				SettleS:   resp.Settle,
				Overshoot: resp.Overshoot,
				Settled:   resp.Settled,
			}
			rows = append(rows, row)
			slog.Info("evaluated",
				"mode", row.Mode,
				"fps", row.FPS,
				"factor", row.Factor,
				"settle_s", row.SettleS,
				"overshoot", row.Overshoot,
				"settled", row.Settled,
			)
		}
	}

	if outputDir == "" {
		return nil
	}
	return writeResults(outputDir, configPath, rows, tuned[camera.DampingExponential])
}

// tuneFactor searches log(factor) so the factor stays positive.
func tuneFactor(sim *simulator, mode camera.DampingMode, settle, dt float64, maxEvals int) (float64, error) {
	var simErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			resp, err := sim.run(mode, math.Exp(x[0]), dt)
			if err != nil {
				simErr = err
				return math.Inf(1)
			}
			d := resp.Settle - settle
			return d * d
		},
	}

	// Exponential decay reaches the tolerance at ln(1/tol)/factor.
	x0 := []float64{math.Log(math.Log(1/sim.tolerance) / settle)}
	settings := &optimize.Settings{FuncEvaluations: maxEvals}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if simErr != nil {
		return 0, simErr
	}
	if err != nil && result == nil {
		return 0, err
	}
	if err != nil {
		slog.Warn("optimization ended early", "mode", mode, "error", err)
	}
	return math.Exp(result.X[0]), nil
}

func writeResults(dir, configPath string, rows []tuneRow, exponential float64) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "tune.csv"))
	if err != nil {
		return fmt.Errorf("creating tune.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("writing tune.csv: %w", err)
	}

	// The exponential factor holds across frame rates, so it is the one
	// written as a default.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Camera.DampingMode = string(camera.DampingExponential)
	cfg.Camera.DefaultDamping = exponential
	out := filepath.Join(dir, "tuned_config.yaml")
	if err := cfg.WriteYAML(out); err != nil {
		return err
	}
	slog.Info("results written", "dir", dir, "rows", len(rows), "config", out)
	return nil
}

func parseFPS(list string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid fps %q", part)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no frame rates given")
	}
	return out, nil
}
