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

// EntityDiscoveryHandler corroborates a newly discovered entity against
// the whole corpus, with no file-type restriction. Effective sources is
// the number of distinct matching files; total mentions sums per-file
// occurrence counts and rides along for the analysts.
type EntityDiscoveryHandler struct {
	searcher corpus.Searcher
	logger   *zap.Logger
}

func (h *EntityDiscoveryHandler) Handle(ctx context.Context, item model.EvidenceItem, led *state.Ledger) *model.Reaction {
	entityName := item.ResolveEntityName()

	reaction := model.Reaction{
		Trigger:    model.TriggerNewEntity,
		Timestamp:  time.Now().UTC(),
		ItemID:     item.Identifier(),
		EntityName: entityName,
		Actions:    []model.Action{},
	}

	if entityName != "" {
		matches := search(ctx, h.searcher, h.logger, entityName, "")
		if len(matches) > 0 {
			totalMentions := matchCountSum(matches)
			sources := len(matches)

			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:             model.ActionCorpusSearch,
				Entity:           entityName,
				Mentions:         totalMentions,
				EffectiveSources: sources,
				Files:            matchFiles(matches),
			})

			reaction.TierAssigned = score.TierForSources(sources)
			reaction.SetSources(sources)

			reaction.Actions = append(reaction.Actions, model.Action{
				Kind:        model.ActionUpdateEntityMap,
				Entity:      entityName,
				Connections: sources,
			})

			if sources >= score.CorporateRecordsMin {
				led.AppendFlag(model.PriorityFlag{
					Type:       model.FlagCorporateRecords,
					ItemID:     reaction.ItemID,
					EntityName: entityName,
					Mentions:   totalMentions,
					Reason:     fmt.Sprintf("%d corpus sources found", sources),
					Timestamp:  time.Now().UTC(),
				})
			}
		}
	}

	led.AppendReaction(reaction)
	return &reaction
}
