package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "[error]", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "docrank",
		Short: "Rank document sections by relevance to a persona and their job to be done",
		Long: `docrank splits PDF, DOCX, TXT, Markdown and HTML documents into page
sections, embeds them together with a persona/job query and reports the
most relevant sections as JSON.

Examples:
  docrank rank --input-dir ./data
  docrank rank --input-dir ./docs --persona "HR professional" --job "Create fillable forms" --top-k 10
  docrank serve --addr :8090
  docrank mcp`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "docrank.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(rankCmd(a))
	rootCmd.AddCommand(mcpCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}
