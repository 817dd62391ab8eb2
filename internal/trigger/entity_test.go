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

func entityHandler(results map[string][]corpus.Match) *EntityDiscoveryHandler {
	return &EntityDiscoveryHandler{
		searcher: &fakeSearcher{results: results},
		logger:   zap.NewNop(),
	}
}

func TestEntityDiscovery_TwoFilesEmitFlag(t *testing.T) {
	// Hits in exactly 2 distinct files: corporate records flag emitted.
	h := entityHandler(map[string][]corpus.Match{
		searchKey("Acme Corp", ""): {
			{File: "a.txt", Count: 3},
			{File: "b.csv", Count: 2},
		},
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "e1",
		Type:       "entity",
		EntityName: "Acme Corp",
	}, led)

	require.Len(t, reaction.Actions, 2)
	search := reaction.Actions[0]
	assert.Equal(t, model.ActionCorpusSearch, search.Kind)
	assert.Equal(t, 5, search.Mentions, "mentions sum per-file counts")
	assert.Equal(t, 2, search.EffectiveSources, "sources count distinct files")

	entityMap := reaction.Actions[1]
	assert.Equal(t, model.ActionUpdateEntityMap, entityMap.Kind)
	assert.Equal(t, 2, entityMap.Connections)

	assert.Equal(t, model.TierSingle, reaction.TierAssigned)

	flags := led.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, model.FlagCorporateRecords, flags[0].Type)
	assert.Equal(t, 5, flags[0].Mentions)
	assert.Equal(t, "2 corpus sources found", flags[0].Reason)
}

func TestEntityDiscovery_OneFileNoFlag(t *testing.T) {
	h := entityHandler(map[string][]corpus.Match{
		searchKey("Acme Corp", ""): {
			{File: "a.txt", Count: 7},
		},
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "e2",
		Type:       "entity",
		EntityName: "Acme Corp",
	}, led)

	assert.Equal(t, model.TierSingle, reaction.TierAssigned)
	assert.Empty(t, led.Flags(), "a single corroborating file stays below the flag threshold")
}

func TestEntityDiscovery_ThreeFilesTierTwo(t *testing.T) {
	h := entityHandler(map[string][]corpus.Match{
		searchKey("Acme Corp", ""): nMatches(3, 1),
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "e3",
		Type:       "entity",
		EntityName: "Acme Corp",
	}, led)

	assert.Equal(t, model.TierCorrob, reaction.TierAssigned)
	require.NotNil(t, reaction.EffectiveSources)
	assert.Equal(t, 3, *reaction.EffectiveSources)
}

func TestEntityDiscovery_NoMatches(t *testing.T) {
	h := entityHandler(nil)
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "e4",
		Type:       "entity",
		EntityName: "Ghost LLC",
	}, led)

	// No corpus hits at all: the reaction is recorded with no actions
	// and no tier, matching the persisted history other agents expect.
	assert.Empty(t, reaction.Actions)
	assert.Equal(t, model.TierUnset, reaction.TierAssigned)
	assert.Nil(t, reaction.EffectiveSources)
	assert.Equal(t, 1, led.TotalReactions())
}
