/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the benchmark and prints the report.

REQUIREMENTS:
  User-specified:
  - Run the trials and print table + means.
  - The CEP and endpoints stay fixed; only tunables are overridable.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run(), internal/telemetry.Init()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error only if config load/validation or output setup fails.
  - API failures never change the exit code.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Validate -> Engine.Run.

USAGE:
  cep-bench run --trials 20 --timeout 5000
*/

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/cep-bench/internal/config"
	"github.com/daryltucker/cep-bench/internal/engine"
	"github.com/daryltucker/cep-bench/internal/output"
	"github.com/daryltucker/cep-bench/internal/telemetry"
)

var (
	trialsOverride  int
	timeoutOverride int
	outputOverride  string
	excludeFailed   bool
	zipkinOverride  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark",
	Long: `Queries ViaCEP and BrasilAPI for CEP ` + config.DefaultPostalCode + `, one after the other,
for the configured number of trials. Each call is bounded by the timeout governor.
Failures are reported in the table as "Erro: ..." and never abort the run.`,
	Example: `  # Run with defaults (10 trials, 3000 ms timeout)
  cep-bench run

  # More trials, export CSV/JSON
  cep-bench run --trials 50 -o ./results

  # Only count successful calls in the mean
  cep-bench run --exclude-failed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		shutdown, err := telemetry.Init(cfg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				output.Logger.Error("Failed to flush traces", "error", err)
			}
		}()

		return engine.Run(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.TrialCount = trialsOverride
	}
	if flags.Changed("timeout") {
		cfg.TimeoutMS = timeoutOverride
	}
	if outputOverride != "" {
		cfg.OutputDir = outputOverride
	}
	if excludeFailed {
		cfg.ExcludeFailedFromMean = true
	}
	if zipkinOverride != "" {
		cfg.ZipkinURL = zipkinOverride
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&trialsOverride, "trials", "n", 10, "Number of trials")
	runCmd.Flags().IntVar(&timeoutOverride, "timeout", 3000, "Per-call timeout in milliseconds")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Also write trials as CSV/JSON Lines to this directory")
	runCmd.Flags().BoolVar(&excludeFailed, "exclude-failed", false, "Exclude failed calls from latency statistics")
	runCmd.Flags().StringVar(&zipkinOverride, "zipkin-url", "", "Zipkin collector URL (enables tracing)")
}
