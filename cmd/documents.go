package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
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

		records, err := store.Registry().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing documents: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No documents ingested yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPAGES\tCHUNKS\tSTATUS")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				rec.ID, rec.Filename, rec.TotalPages, rec.ChunkCount, rec.Status)
		}
		return w.Flush()
	},
}

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <doc-id>",
	Short: "Delete a document and its index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		docID := args[0]
		if !deleteForce {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete document %s and its index", docID),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Aborted.")
				return nil
			}
		}

		database, store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if store.Delete(cmd.Context(), docID) {
			fmt.Printf("Deleted %s\n", docID)
		} else {
			fmt.Printf("Nothing to delete for %s\n", docID)
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}
