package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"studyassist/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path or glob>...",
	Short: "Ingest documents into the store",
	Long: `Parses, chunks and indexes documents so they can be queried. Accepts
file paths and doublestar globs, e.g.:

  studyassist ingest notes.pdf "lectures/**/*.pdf"`,
	Args: cobra.MinimumNArgs(1),
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

		var paths []string
		for _, arg := range args {
			matches, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			if len(matches) == 0 {
				// Not a pattern match; treat as a literal path so a
				// missing file is reported per document below.
				matches = []string{arg}
			}
			paths = append(paths, matches...)
		}

		reporter := progress.NewReporter()
		reporter.Start(len(paths))

		ctx := cmd.Context()
		var failed int
		for i, path := range paths {
			reporter.Update(i+1, filepath.Base(path))
			result := store.Ingest(ctx, path, uuid.NewString())
			if result.Status == "error" {
				failed++
				fmt.Fprintf(os.Stderr, "\n%s: %s\n", path, result.Error)
			}
		}
		reporter.Finish()

		fmt.Fprintf(os.Stderr, "Ingested %d of %d document(s)\n", len(paths)-failed, len(paths))
		if failed > 0 {
			return fmt.Errorf("%d document(s) failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
