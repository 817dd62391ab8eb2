package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show processor status from the persisted documents",
	Long: `Status renders a read-only snapshot of the engine's output documents:
processor state, feed depth, recent reactions, tier upgrades and
priority flags. It never touches engine state.

Example:
  gapfill status --coord-dir ./coordination`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusRecent int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&coordDir, "coord-dir", "./coordination", "coordination directory for feed and state documents")
	statusCmd.Flags().IntVar(&statusRecent, "recent", 5, "number of recent reactions to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.Coordination.Dir = coordDir

	var log state.ReactionLog
	haveLog := readDoc(cfg.ReactionLogPath(), &log)

	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  Gapfill Reactive Processor")
	fmt.Println("═══════════════════════════════════════════════════════")
	if !haveLog {
		fmt.Println("  Status:           not yet started")
	} else {
		fmt.Printf("  Run ID:           %s\n", log.RunID)
		fmt.Printf("  Status:           %s\n", log.Status)
		fmt.Printf("  Last updated:     %s\n", log.LastUpdated.Local().Format(time.RFC1123))
		fmt.Printf("  Items processed:  %d\n", len(log.ProcessedItems))
		fmt.Printf("  Total reactions:  %d\n", log.TotalReactions)
		fmt.Printf("  Tier upgrades:    %d\n", log.TierUpgradesCount)
		fmt.Printf("  Priority flags:   %d\n", log.HighPriorityCount)
	}

	var feed model.Feed
	if readDoc(cfg.FeedPath(), &feed) {
		pending := 0
		seen := make(map[string]bool, len(log.ProcessedItems))
		for _, id := range log.ProcessedItems {
			seen[id] = true
		}
		for _, item := range feed.Items {
			if !seen[item.Identifier()] {
				pending++
			}
		}
		fmt.Printf("  Feed items:       %d (%d pending)\n", len(feed.Items), pending)
	}

	if haveLog && statusRecent > 0 && len(log.Reactions) > 0 {
		fmt.Println()
		fmt.Println("  Recent reactions:")
		start := len(log.Reactions) - statusRecent
		if start < 0 {
			start = 0
		}
		for _, r := range log.Reactions[start:] {
			tier := ""
			if r.TierAssigned != model.TierUnset {
				tier = fmt.Sprintf("  tier=%s", r.TierAssigned)
			}
			fmt.Printf("    %s  %-15s %s%s\n",
				r.Timestamp.Local().Format("15:04:05"), r.Trigger, r.ItemID, tier)
		}
	}

	var upgrades state.UpgradeLog
	if readDoc(cfg.TierUpgradesPath(), &upgrades) && len(upgrades.Upgrades) > 0 {
		fmt.Println()
		fmt.Println("  Tier upgrades:")
		for _, u := range upgrades.Upgrades {
			fmt.Printf("    %s: %s → %s  (%s)\n", u.ItemID, u.FromTier, u.ToTier, u.Reason)
		}
	}

	var flags state.FlagLog
	if readDoc(cfg.PriorityFlagsPath(), &flags) && len(flags.Flags) > 0 {
		fmt.Println()
		fmt.Println("  Priority flags:")
		for _, f := range flags.Flags {
			fmt.Printf("    [%s] %s  (%s)\n", f.Type, f.ItemID, f.Reason)
		}
	}

	fmt.Println("═══════════════════════════════════════════════════════")
	return nil
}

// readDoc reads a JSON document, reporting false when missing or
// malformed. Missing documents render as empty sections.
func readDoc(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
