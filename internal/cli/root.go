/*
PURPOSE:
  Defines the root Cobra command for the cep-bench CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Context comes from main so Ctrl-C reaches in-flight requests.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/cep-bench/main.go
  - Calls: Child commands (run, list-apis)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

RELATED FILES:
  - cmd/cep-bench/main.go
*/

package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/daryltucker/cep-bench/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "cep-bench",
		Short: "Latency benchmark for Brazilian CEP lookup APIs",
		Long:  `Compares ViaCEP and BrasilAPI latency and address data for a fixed CEP. Use 'run --help' for benchmark options.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				output.SetLevel(os.Stderr, slog.LevelDebug)
			}
		},
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cep_bench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
