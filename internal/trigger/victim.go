package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/score"
	"github.com/certainly-project/gapfill/internal/state"
	"go.uber.org/zap"
)

// VictimReportHandler corroborates victim reports against the corpus:
// wallet addresses against CSV ledger exports, victim names against JSON
// chat exports. Effective sources is the number of distinct matching
// files across both searches, not raw occurrence counts.
type VictimReportHandler struct {
	searcher corpus.Searcher
	logger   *zap.Logger
}

func (h *VictimReportHandler) Handle(ctx context.Context, item model.EvidenceItem, led *state.Ledger) *model.Reaction {
	victimName := item.ResolveVictimName()
	walletAddress := item.ResolveWalletAddress()

	reaction := model.Reaction{
		Trigger:    model.TriggerVictimReport,
		Timestamp:  time.Now().UTC(),
		ItemID:     item.Identifier(),
		VictimName: victimName,
		Actions:    []model.Action{},
	}

	if walletAddress != "" {
		matches := search(ctx, h.searcher, h.logger, walletAddress, "csv")
		if len(matches) > 0 {
			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:    model.ActionWalletMatch,
				Wallet:  walletAddress,
				Sources: len(matches),
				Files:   matchFiles(matches),
			})
		}
	}

	if victimName != "" {
		matches := search(ctx, h.searcher, h.logger, victimName, "json")
		if len(matches) > 0 {
			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:    model.ActionNameMention,
				Victim:  victimName,
				Sources: len(matches),
				Files:   matchFiles(matches),
			})
		}
	}

	totalSources := 0
	for _, a := range reaction.Actions {
		totalSources += a.Sources
	}

	reaction.TierAssigned = score.TierForSources(totalSources)
	reaction.SetSources(totalSources)

	if totalSources >= score.VictimInterviewMin {
		led.AppendFlag(model.PriorityFlag{
			Type:       model.FlagVictimInterview,
			ItemID:     reaction.ItemID,
			VictimName: victimName,
			Reason:     fmt.Sprintf("%d corroborating sources found", totalSources),
			Timestamp:  time.Now().UTC(),
		})
	}

	led.AppendReaction(reaction)
	return &reaction
}
