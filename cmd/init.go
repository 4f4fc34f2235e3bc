package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"studyassist/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("config file %s already exists", cfgFile)
		}

		cfg := config.DefaultConfig()
		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Wrote %s\n", cfgFile)
		fmt.Println("Set OPENAI_API_KEY in your environment, then run `studyassist serve`.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
