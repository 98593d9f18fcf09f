/*
PURPOSE:
  Entry point for cep-bench.
  Initializes the CLI root command and executes it.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Exit code 1 only for CLI/config errors; API failures are report data.

IMPLEMENTATION RULES:
  - Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o cep-bench ./cmd/cep-bench
  ./cep-bench run
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/daryltucker/cep-bench/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
