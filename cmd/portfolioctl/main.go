package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolioctl",
		Short: "Optimize portfolio weights offline from CSV price files",
		Long: `portfolioctl runs the portfolio optimizer against a YAML holdings file
and a directory of <TICKER>.csv closing price files, without a server or database.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newOptimizeCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the portfolioctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolioctl %s\n", version)
		},
	})
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
