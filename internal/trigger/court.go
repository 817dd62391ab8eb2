package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/certainly-project/gapfill/internal/verify"
	"go.uber.org/zap"
)

// CourtRecordHandler verifies previously recorded claims against a new
// court record. Every verification-corpus candidate whose serialized
// text references the case and whose tier is upgradable is promoted to
// tier 1. A monetary amount on the record is additionally cross-checked
// against CSV ledger exports.
//
// This handler emits no priority flag of its own.
type CourtRecordHandler struct {
	searcher corpus.Searcher
	verifier *verify.Loader
	logger   *zap.Logger
}

func (h *CourtRecordHandler) Handle(ctx context.Context, item model.EvidenceItem, led *state.Ledger) *model.Reaction {
	caseRef := item.CaseReference()

	reaction := model.Reaction{
		Trigger:    model.TriggerCourtRecord,
		Timestamp:  time.Now().UTC(),
		ItemID:     item.Identifier(),
		CaseNumber: item.ResolveCaseNumber(),
		Actions:    []model.Action{},
	}

	verified := []string{}
	for _, cand := range h.verifier.Load() {
		if !cand.References(caseRef) || !cand.Tier.Upgradable() {
			continue
		}
		upgrade := model.TierUpgrade{
			ItemID:    cand.ID,
			FromTier:  cand.Tier,
			ToTier:    model.TierVerified,
			Reason:    fmt.Sprintf("Court record verification: %s", item.ResolveCaseNumber()),
			Timestamp: time.Now().UTC(),
		}
		// The ledger rejects the upgrade when the claim already sits at
		// tier 1 from an earlier pass; tiers never move backwards.
		if led.AppendUpgrade(upgrade) {
			verified = append(verified, cand.ID)
		}
	}

	reaction.Actions = append(reaction.Actions, model.Action{
		Kind:          model.ActionClaimVerification,
		VerifiedItems: len(verified),
		Items:         verified,
	})

	if amount := item.Amount.Digits(); amount != "" {
		matches := search(ctx, h.searcher, h.logger, amount, "csv")
		if len(matches) > 0 {
			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:    model.ActionAmountCrossReference,
				Amount:  string(item.Amount),
				Sources: len(matches),
				Files:   matchFiles(matches),
			})
		}
	}

	led.AppendReaction(reaction)
	return &reaction
}
