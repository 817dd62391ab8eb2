package cli

import (
	"fmt"

	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	emitType       string
	emitCategory   string
	emitVictimName string
	emitWallet     string
	emitCaseNumber string
	emitVideoURL   string
	emitEntityName string
	emitAmount     string
	emitPreset     bool
)

// emitCmd represents the emit command
var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Append a manufactured evidence item to the live feed",
	Long: `Emit plays the producer side for testing: it appends one evidence item
to the live feed, stamping discovered_at and generating an id when none
is given. The running processor picks the item up on its next poll.

With --preset, four canned discoveries are appended instead (one per
trigger kind).

Example:
  gapfill emit --type victim_report --victim-name "John Doe" --wallet 0x7d83...
  gapfill emit --type court_record --case-number 2:24-cv-01034 --amount '$50,000'
  gapfill emit --type video_evidence --video-url https://example.com/watch/883
  gapfill emit --preset`,
	Args: cobra.NoArgs,
	RunE: runEmit,
}

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVar(&coordDir, "coord-dir", "./coordination", "coordination directory for feed and state documents")
	emitCmd.Flags().StringVar(&emitType, "type", "", "item type (victim_report, court_record, video_evidence, entity)")
	emitCmd.Flags().StringVar(&emitCategory, "category", "", "item category (victim_testimony, blockchain)")
	emitCmd.Flags().StringVar(&emitVictimName, "victim-name", "", "victim name")
	emitCmd.Flags().StringVar(&emitWallet, "wallet", "", "wallet address")
	emitCmd.Flags().StringVar(&emitCaseNumber, "case-number", "", "court case number")
	emitCmd.Flags().StringVar(&emitVideoURL, "video-url", "", "video URL")
	emitCmd.Flags().StringVar(&emitEntityName, "entity", "", "entity name")
	emitCmd.Flags().StringVar(&emitAmount, "amount", "", "monetary amount")
	emitCmd.Flags().BoolVar(&emitPreset, "preset", false, "emit the four canned discoveries")
}

func runEmit(cmd *cobra.Command, args []string) error {
	cfg := model.DefaultConfig()
	cfg.Coordination.Dir = coordDir

	items := []model.EvidenceItem{}
	if emitPreset {
		items = presetItems()
	} else {
		if emitType == "" && emitCategory == "" {
			return fmt.Errorf("nothing to emit: give --type/--category or use --preset")
		}
		items = append(items, model.EvidenceItem{
			Type:          emitType,
			Category:      emitCategory,
			VictimName:    emitVictimName,
			WalletAddress: emitWallet,
			CaseNumber:    emitCaseNumber,
			VideoURL:      emitVideoURL,
			EntityName:    emitEntityName,
			Amount:        model.Amount(emitAmount),
		})
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = "item_" + uuid.NewString()[:12]
		}
		feed, err := state.AppendFeedItem(cfg.FeedPath(), items[i])
		if err != nil {
			return fmt.Errorf("emit: %w", err)
		}
		fmt.Printf("✓ Added %s: %s (feed depth %d)\n",
			displayType(items[i]), items[i].ID, len(feed.Items))
	}
	return nil
}

func displayType(item model.EvidenceItem) string {
	if item.Type != "" {
		return item.Type
	}
	if item.Category != "" {
		return item.Category
	}
	return "item"
}

// presetItems mirrors the canned scout discoveries used for end-to-end
// rehearsal: one item per trigger kind.
func presetItems() []model.EvidenceItem {
	return []model.EvidenceItem{
		{
			Type:          "victim_report",
			VictimName:    "John Doe",
			WalletAddress: "0x7d8378d189831f25e184621a1cc026fc99f9c48c",
			Amount:        model.Amount("50000"),
			Claim:         "Promised device never delivered",
			Source:        "victim_interview",
		},
		{
			Type:       "court_record",
			CaseNumber: "2:24-cv-01034",
			Amount:     model.Amount("$50,000"),
		},
		{
			Type:     "video_evidence",
			VideoURL: "https://example.com/watch/health-claims-883",
		},
		{
			Type:       "entity",
			EntityName: "Meridian Wellness Holdings",
		},
	}
}
