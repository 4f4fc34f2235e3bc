package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "studyassist",
	Short: "AI study assistant for your documents",
	Long: `Study Assist ingests PDF, Markdown and plain-text documents into
per-document vector indexes and answers questions about them through a
tool-using conversational agent. It serves chat over HTTP (SSE and
WebSocket) and exposes its retrieval tools to AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".studyassist.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
