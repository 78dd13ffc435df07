// cmd/nebula/root.go
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Annany2002/nebula-docstore/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

var rootCmd = &cobra.Command{
	Use:   "nebula",
	Short: "Nebula document store server and tools",
	Long: `nebula runs the Nebula document store API and its offline tools.

Examples:

  nebula serve
  nebula export --email ada@example.com --format yaml --out ada.yaml
  nebula import --email ada@example.com --in ada.yaml
`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
