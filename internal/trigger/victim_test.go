package trigger

import (
	"context"
	"testing"

	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func victimHandler(results map[string][]corpus.Match) *VictimReportHandler {
	return &VictimReportHandler{
		searcher: &fakeSearcher{results: results},
		logger:   zap.NewNop(),
	}
}

func TestVictimReport_FullCorroboration(t *testing.T) {
	// Wallet in 2 CSV files, name in 1 JSON file: 3 effective sources,
	// tier 2, interview flag.
	h := victimHandler(map[string][]corpus.Match{
		searchKey("0xABC", "csv"): nMatches(2, 1),
		searchKey("Jane", "json"): nMatches(1, 4),
	})
	led := state.NewLedger(0)

	item := model.EvidenceItem{
		ID:       "v1",
		Type:     "victim_report",
		Metadata: model.Metadata{WalletAddress: "0xABC", VictimName: "Jane"},
	}
	reaction := h.Handle(context.Background(), item, led)

	require.NotNil(t, reaction)
	assert.Equal(t, model.TriggerVictimReport, reaction.Trigger)
	assert.Equal(t, "Jane", reaction.VictimName)

	require.Len(t, reaction.Actions, 2)
	assert.Equal(t, model.ActionWalletMatch, reaction.Actions[0].Kind)
	assert.Equal(t, 2, reaction.Actions[0].Sources)
	assert.Equal(t, model.ActionNameMention, reaction.Actions[1].Kind)
	assert.Equal(t, 1, reaction.Actions[1].Sources)

	// Effective sources sums result-set sizes, not occurrence counts.
	require.NotNil(t, reaction.EffectiveSources)
	assert.Equal(t, 3, *reaction.EffectiveSources)
	assert.Equal(t, model.TierCorrob, reaction.TierAssigned)

	flags := led.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, model.FlagVictimInterview, flags[0].Type)
	assert.Equal(t, "v1", flags[0].ItemID)
	assert.Equal(t, "3 corroborating sources found", flags[0].Reason)
}

func TestVictimReport_SingleSource(t *testing.T) {
	h := victimHandler(map[string][]corpus.Match{
		searchKey("Jane", "json"): nMatches(1, 1),
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "v2",
		Type:       "victim_report",
		VictimName: "Jane",
	}, led)

	assert.Equal(t, model.TierSingle, reaction.TierAssigned)
	require.NotNil(t, reaction.EffectiveSources)
	assert.Equal(t, 1, *reaction.EffectiveSources)
	assert.Empty(t, led.Flags(), "one source stays below the interview threshold")
}

func TestVictimReport_FlagThresholdBoundary(t *testing.T) {
	// Exactly 2 effective sources emits the interview flag.
	h := victimHandler(map[string][]corpus.Match{
		searchKey("0xABC", "csv"): nMatches(2, 1),
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:            "v3",
		Type:          "victim_report",
		WalletAddress: "0xABC",
	}, led)

	assert.Equal(t, model.TierSingle, reaction.TierAssigned)
	require.Len(t, led.Flags(), 1)
	assert.Equal(t, model.FlagVictimInterview, led.Flags()[0].Type)
}

func TestVictimReport_NoCorroboration(t *testing.T) {
	h := victimHandler(nil)
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "v4",
		Type:       "victim_report",
		VictimName: "Nobody Known",
	}, led)

	assert.Equal(t, model.TierFlagged, reaction.TierAssigned)
	require.NotNil(t, reaction.EffectiveSources)
	assert.Zero(t, *reaction.EffectiveSources)
	assert.Empty(t, reaction.Actions)
	assert.Empty(t, led.Flags())
	assert.Equal(t, 1, led.TotalReactions())
}

func TestVictimReport_MetadataWinsOverTopLevel(t *testing.T) {
	h := victimHandler(map[string][]corpus.Match{
		searchKey("Meta Jane", "json"): nMatches(1, 1),
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "v5",
		Type:       "victim_report",
		VictimName: "Top Jane",
		Metadata:   model.Metadata{VictimName: "Meta Jane"},
	}, led)

	assert.Equal(t, "Meta Jane", reaction.VictimName)
	require.Len(t, reaction.Actions, 1)
	assert.Equal(t, "Meta Jane", reaction.Actions[0].Victim)
}
