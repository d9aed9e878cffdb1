// Command fscoin serves and exercises the random helpers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xtding233/fscoin/internal/config"
)

var cfgFiles []string

var rootCmd = &cobra.Command{
	Use:           "fscoin",
	Short:         "crypto-seeded random integers and a majority-vote coin flip",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&cfgFiles, "config", "c", nil,
		"YAML config file(s), applied in order over the defaults")

	rootCmd.AddCommand(
		newServeCmd(),
		newRandintCmd(),
		newChooseCmd(),
		newSimulateCmd(),
		newBeepCmd(),
	)
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFiles...)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fscoin:", err)
		os.Exit(1)
	}
}
