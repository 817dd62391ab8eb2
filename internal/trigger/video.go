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

// VideoEvidenceHandler traces how widely a video URL was promoted across
// the corpus. Every occurrence counts as one wire-fraud instance, so the
// escalation threshold sums match counts rather than distinct files.
// Two follow-up actions are scheduled unconditionally: transcript
// extraction and archival are mandatory downstream tasks regardless of
// corroboration.
type VideoEvidenceHandler struct {
	searcher corpus.Searcher
	logger   *zap.Logger
}

func (h *VideoEvidenceHandler) Handle(ctx context.Context, item model.EvidenceItem, led *state.Ledger) *model.Reaction {
	videoURL := item.ResolveVideoURL()

	reaction := model.Reaction{
		Trigger:   model.TriggerVideoEvidence,
		Timestamp: time.Now().UTC(),
		ItemID:    item.Identifier(),
		VideoURL:  videoURL,
		Actions:   []model.Action{},
	}

	if videoURL != "" {
		pattern := corpus.SanitizePattern(videoURL)
		matches := search(ctx, h.searcher, h.logger, pattern, "")
		if len(matches) > 0 {
			wireFraudCount := matchCountSum(matches)

			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:               model.ActionURLPromotion,
				VideoURL:           videoURL,
				WireFraudInstances: wireFraudCount,
				Sources:            len(matches),
				Files:              matchFiles(matches),
			})

			if wireFraudCount >= score.WireFraudMin {
				led.AppendFlag(model.PriorityFlag{
					Type:      model.FlagWireFraudPattern,
					ItemID:    reaction.ItemID,
					VideoURL:  videoURL,
					Count:     wireFraudCount,
					Reason:    fmt.Sprintf("%d wire fraud instances detected", wireFraudCount),
					Timestamp: time.Now().UTC(),
				})
			}
		}
	}

	reaction.Actions = append(reaction.Actions,
		model.Action{
			Kind:     model.ActionTranscriptExtraction,
			Purpose:  "regulatory violation review",
			Priority: "high",
		},
		model.Action{
			Kind:     model.ActionArchiveVideo,
			Reason:   "prevent deletion",
			Priority: "critical",
		},
	)

	led.AppendReaction(reaction)
	return &reaction
}
