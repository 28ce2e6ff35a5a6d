package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/support-router/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "supportd",
	Short: "Support message router and ticket lifecycle service",
}

func init() {
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.EvalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
