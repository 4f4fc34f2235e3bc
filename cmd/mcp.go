package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "studyassist/internal/mcp"
	"studyassist/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and study-material tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "studyassist MCP server started on stdio (data=%s)\n", cfg.DataDir)

		srv := mcpserver.NewServer(store, tools.NewRegistry(store))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
