/*
PURPOSE:
  Defines the 'list-apis' subcommand.
  Shows which endpoints a run would query.

USAGE:
  cep-bench list-apis
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/cep-bench/internal/config"
	"github.com/daryltucker/cep-bench/internal/engine"
	"github.com/daryltucker/cep-bench/internal/model"
)

var listAPIsCmd = &cobra.Command{
	Use:   "list-apis",
	Short: "List the benchmarked APIs and the URLs they are queried at",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		e := engine.New(cfg)
		for _, api := range model.APIs {
			url, err := e.URL(cfg.PostalCode, api)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", api.Label(), url)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listAPIsCmd)
}
