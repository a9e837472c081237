//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/cottand/dynsafe/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "dynsafe [subcommand]",
	Short:        "dynsafe decides which interfaces can be used as dynamic handles",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.ExplainCmd)
}
