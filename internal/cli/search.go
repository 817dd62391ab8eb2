package cli

import (
	"fmt"
	"time"

	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchFileType string
	searchRoots    []string
	searchTimeoutF time.Duration
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Run a one-off corpus search",
	Long: `Search queries the corpus the same way the trigger handlers do:
case-sensitive substring matching with per-file occurrence counts. A '.'
in the pattern matches any single character.

Example:
  gapfill search 0x7d8378d1 --root ./noteworthy-raw --type csv
  gapfill search "Meridian Wellness" --root ./dump-a --root ./dump-b`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringArrayVar(&searchRoots, "root", nil, "corpus root directory (repeatable)")
	searchCmd.Flags().StringVar(&searchFileType, "type", "", "restrict to files with this extension (e.g. csv, json)")
	searchCmd.Flags().DurationVar(&searchTimeoutF, "timeout", 30*time.Second, "search timeout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	if len(searchRoots) == 0 {
		return fmt.Errorf("no corpus roots given: use --root")
	}

	searcher := corpus.NewDirSearcher(searchRoots, zap.NewNop(),
		corpus.WithTimeout(searchTimeoutF))

	matches, err := searcher.Search(cmd.Context(), pattern, searchFileType)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	total := 0
	for _, m := range matches {
		fmt.Printf("%6d  %s\n", m.Count, m.File)
		total += m.Count
	}
	fmt.Printf("\n%d occurrences across %d files\n", total, len(matches))
	return nil
}
