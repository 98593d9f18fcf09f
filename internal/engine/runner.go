/*
PURPOSE:
  High-level runner that orchestrates the benchmark.
  Runs N sequential trials (ViaCEP then BrasilAPI), aggregates latency
  statistics and hands the report to the output writers.

REQUIREMENTS:
  User-specified:
  - Strictly sequential calls, never concurrent.
  - Trials numbered 1..N in order.
  - Mean latency per API, "no data" when there are no samples.

  Implementation-discovered:
  - Failed calls still carry a latency and count toward the mean unless
    exclude_failed_from_mean is set.
  - Rows are exported as each trial completes so a killed run keeps its data.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/engine (Execute), internal/output

ERROR HANDLING:
  - Per-call failures are data, never errors.
  - Only output setup failures are returned.

USAGE:
  engine.Run(ctx, cfg, os.Stdout)

RELATED FILES:
  - internal/engine/client.go
  - internal/output/table.go

MAINTENANCE:
  - Keep trials sequential; the latency numbers assume an idle client.
*/

package engine

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/daryltucker/cep-bench/internal/config"
	"github.com/daryltucker/cep-bench/internal/model"
	"github.com/daryltucker/cep-bench/internal/output"
)

// Executor performs one timed lookup.
type Executor interface {
	Execute(ctx context.Context, postalCode string, api model.API) model.Outcome
}

// TrialWriter receives each trial as soon as it completes.
type TrialWriter interface {
	Write(t model.Trial) error
	Close() error
}

// Run executes the full benchmark and renders the report to w.
func Run(ctx context.Context, cfg *config.Config, w io.Writer) error {
	writers, err := openWriters(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, tw := range writers {
			if err := tw.Close(); err != nil {
				output.Logger.Error("Failed to close result writer", "error", err)
			}
		}
	}()

	output.Logger.Info("Starting benchmark",
		"postal_code", cfg.PostalCode,
		"trials", cfg.TrialCount,
		"timeout_ms", cfg.TimeoutMS,
	)

	report := Bench(ctx, cfg, New(cfg), func(t model.Trial) {
		output.Logger.Info("Trial complete",
			"trial", t.Number,
			"viacep_ms", t.ViaCEP.LatencyMS,
			"brasilapi_ms", t.BrasilAPI.LatencyMS,
		)
		for _, tw := range writers {
			if err := tw.Write(t); err != nil {
				output.Logger.Error("Failed to write trial", "trial", t.Number, "error", err)
			}
		}
	})

	return output.RenderReport(w, report)
}

func openWriters(cfg *config.Config) ([]TrialWriter, error) {
	if cfg.OutputDir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", cfg.OutputDir)
	}

	csvPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to init CSV writer at %s", csvPath)
	}

	jsonPath := filepath.Join(cfg.OutputDir, strings.TrimSuffix(cfg.OutputFile, filepath.Ext(cfg.OutputFile))+".jsonl")
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		csvWriter.Close()
		return nil, errors.Wrapf(err, "failed to init JSON writer at %s", jsonPath)
	}

	return []TrialWriter{csvWriter, jsonWriter}, nil
}

// Bench runs cfg.TrialCount sequential trials and aggregates them.
// onTrial, when non-nil, is called after every trial.
func Bench(ctx context.Context, cfg *config.Config, exec Executor, onTrial func(model.Trial)) model.Report {
	trials := make([]model.Trial, 0, max(cfg.TrialCount, 0))

	for i := 1; i <= cfg.TrialCount; i++ {
		via := exec.Execute(ctx, cfg.PostalCode, model.ViaCEP)
		brasil := exec.Execute(ctx, cfg.PostalCode, model.BrasilAPI)

		t := model.Trial{Number: i, ViaCEP: via, BrasilAPI: brasil}
		trials = append(trials, t)
		if onTrial != nil {
			onTrial(t)
		}
	}

	return model.Report{
		PostalCode: cfg.PostalCode,
		Trials:     trials,
		ViaCEP:     Summarize(model.ViaCEP, trials, cfg.ExcludeFailedFromMean),
		BrasilAPI:  Summarize(model.BrasilAPI, trials, cfg.ExcludeFailedFromMean),
	}
}

// Summarize computes latency statistics for api across trials.
func Summarize(api model.API, trials []model.Trial, excludeFailed bool) model.Stats {
	st := model.Stats{API: api}

	var latencies []int
	for _, t := range trials {
		o := t.Outcome(api)
		if o.Failed {
			st.Failures++
			if excludeFailed {
				continue
			}
		}
		latencies = append(latencies, o.LatencyMS)
	}

	st.Samples = len(latencies)
	st.Mean = MeanOf(latencies)
	if len(latencies) == 0 {
		return st
	}

	sorted := append([]int(nil), latencies...)
	sort.Ints(sorted)
	st.Min = model.Mean{Value: sorted[0], Valid: true}
	st.Max = model.Mean{Value: sorted[len(sorted)-1], Valid: true}

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		st.Median = model.Mean{Value: sorted[mid], Valid: true}
	} else {
		st.Median = MeanOf(sorted[mid-1 : mid+1])
	}
	return st
}

// MeanOf returns round(sum/count), or an invalid Mean for no samples.
func MeanOf(latencies []int) model.Mean {
	if len(latencies) == 0 {
		return model.Mean{}
	}
	sum := 0
	for _, l := range latencies {
		sum += l
	}
	return model.Mean{
		Value: int(math.Floor(float64(sum)/float64(len(latencies)) + 0.5)),
		Valid: true,
	}
}
