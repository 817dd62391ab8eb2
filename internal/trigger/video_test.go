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

func videoHandler(results map[string][]corpus.Match) *VideoEvidenceHandler {
	return &VideoEvidenceHandler{
		searcher: &fakeSearcher{results: results},
		logger:   zap.NewNop(),
	}
}

// The searched pattern is the sanitized URL, not the raw one.
var videoPattern = corpus.SanitizePattern("https://x/y")

func TestVideoEvidence_BelowWireFraudThreshold(t *testing.T) {
	// 9 total occurrences across the corpus: no flag.
	h := videoHandler(map[string][]corpus.Match{
		searchKey(videoPattern, ""): {
			{File: "a.json", Count: 4},
			{File: "b.json", Count: 5},
		},
	})
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:       "vid1",
		Type:     "video_evidence",
		VideoURL: "https://x/y",
	}, led)

	require.Len(t, reaction.Actions, 3)
	promo := reaction.Actions[0]
	assert.Equal(t, model.ActionURLPromotion, promo.Kind)
	assert.Equal(t, 9, promo.WireFraudInstances)
	assert.Equal(t, 2, promo.Sources)

	assert.Empty(t, led.Flags(), "9 instances stay below the threshold")
}

func TestVideoEvidence_AtWireFraudThreshold(t *testing.T) {
	// Exactly 10 occurrences: flag emitted. Occurrences sum match
	// counts, not distinct files.
	h := videoHandler(map[string][]corpus.Match{
		searchKey(videoPattern, ""): {
			{File: "a.json", Count: 10},
		},
	})
	led := state.NewLedger(0)

	h.Handle(context.Background(), model.EvidenceItem{
		ID:       "vid2",
		Type:     "video_evidence",
		VideoURL: "https://x/y",
	}, led)

	flags := led.Flags()
	require.Len(t, flags, 1)
	assert.Equal(t, model.FlagWireFraudPattern, flags[0].Type)
	assert.Equal(t, 10, flags[0].Count)
	assert.Equal(t, "10 wire fraud instances detected", flags[0].Reason)
}

func TestVideoEvidence_MandatoryFollowups(t *testing.T) {
	// Even with no URL at all, transcript extraction and archival are
	// scheduled: they are mandatory downstream tasks.
	h := videoHandler(nil)
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:   "vid3",
		Type: "video_evidence",
	}, led)

	require.Len(t, reaction.Actions, 2)
	assert.Equal(t, model.ActionTranscriptExtraction, reaction.Actions[0].Kind)
	assert.Equal(t, "high", reaction.Actions[0].Priority)
	assert.Equal(t, model.ActionArchiveVideo, reaction.Actions[1].Kind)
	assert.Equal(t, "critical", reaction.Actions[1].Priority)
	assert.Equal(t, model.TierUnset, reaction.TierAssigned, "video reactions carry no tier")
}
