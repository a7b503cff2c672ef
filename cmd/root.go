package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "posbridge",
	Short: "Commerce platform bridge: catalog mirror, orders, fulfillment",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		fig := figure.NewFigure("posbridge", "slant", true)
		fig.Print()
	},
}

// Execute runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
