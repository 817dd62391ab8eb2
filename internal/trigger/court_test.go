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

func TestCourtRecord_UpgradesReferencedClaims(t *testing.T) {
	verifier := writeVerificationCorpus(t, []map[string]any{
		{"id": "claim-1", "tier": 2, "summary": "settlement in case 2:24-CV-01034"},
		{"id": "claim-2", "tier": "flagged", "summary": "mentions 2:24-cv-01034 too"},
		{"id": "claim-3", "tier": 3, "summary": "also cites 2:24-cv-01034"},
		{"id": "claim-4", "tier": 2, "summary": "unrelated case"},
	})
	h := &CourtRecordHandler{
		searcher: &fakeSearcher{},
		verifier: verifier,
		logger:   zap.NewNop(),
	}
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "c1",
		Type:       "court_record",
		CaseNumber: "2:24-cv-01034",
	}, led)

	require.NotNil(t, reaction)
	assert.Equal(t, model.TriggerCourtRecord, reaction.Trigger)
	assert.Equal(t, "2:24-cv-01034", reaction.CaseNumber)

	// claim-1 (tier 2, case-insensitive match) and claim-2 (flagged)
	// upgrade; claim-3 is tier 3 and stays; claim-4 never matched.
	upgrades := led.Upgrades()
	require.Len(t, upgrades, 2)
	assert.Equal(t, "claim-1", upgrades[0].ItemID)
	assert.Equal(t, model.TierCorrob, upgrades[0].FromTier)
	assert.Equal(t, model.TierVerified, upgrades[0].ToTier)
	assert.Equal(t, "Court record verification: 2:24-cv-01034", upgrades[0].Reason)
	assert.Equal(t, "claim-2", upgrades[1].ItemID)
	assert.Equal(t, model.TierFlagged, upgrades[1].FromTier)

	require.Len(t, reaction.Actions, 1)
	assert.Equal(t, model.ActionClaimVerification, reaction.Actions[0].Kind)
	assert.Equal(t, 2, reaction.Actions[0].VerifiedItems)
	assert.Equal(t, []string{"claim-1", "claim-2"}, reaction.Actions[0].Items)

	assert.Empty(t, led.Flags(), "the court handler emits no priority flags")
}

func TestCourtRecord_SecondPassNoConflictingDowngrade(t *testing.T) {
	verifier := writeVerificationCorpus(t, []map[string]any{
		{"id": "claim-1", "tier": 2, "summary": "case 2:24-cv-01034"},
	})
	h := &CourtRecordHandler{searcher: &fakeSearcher{}, verifier: verifier, logger: zap.NewNop()}
	led := state.NewLedger(0)

	item := model.EvidenceItem{ID: "c1", Type: "court_record", CaseNumber: "2:24-cv-01034"}
	h.Handle(context.Background(), item, led)

	// A second court record citing the same case reads the same stale
	// tier-2 entry from the document, but the ledger holds tier 1 for
	// the claim already: no second upgrade is recorded.
	item2 := model.EvidenceItem{ID: "c2", Type: "court_record", CaseNumber: "2:24-cv-01034"}
	reaction := h.Handle(context.Background(), item2, led)

	assert.Len(t, led.Upgrades(), 1)
	assert.Equal(t, 0, reaction.Actions[0].VerifiedItems)
	assert.Equal(t, model.TierVerified, led.BestTier("claim-1"))
}

func TestCourtRecord_AmountCrossReference(t *testing.T) {
	h := &CourtRecordHandler{
		searcher: &fakeSearcher{results: map[string][]corpus.Match{
			searchKey("50000", "csv"): nMatches(2, 1),
		}},
		verifier: writeVerificationCorpus(t, nil),
		logger:   zap.NewNop(),
	}
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "c3",
		Type:       "court_record",
		CaseNumber: "1:19-cr-00500",
		Amount:     model.Amount("$50,000"),
	}, led)

	// The formatted amount is normalized to bare digits for the CSV
	// search, but the action echoes the original form.
	require.Len(t, reaction.Actions, 2)
	cross := reaction.Actions[1]
	assert.Equal(t, model.ActionAmountCrossReference, cross.Kind)
	assert.Equal(t, "$50,000", cross.Amount)
	assert.Equal(t, 2, cross.Sources)
}

func TestCourtRecord_CaseNameFallback(t *testing.T) {
	verifier := writeVerificationCorpus(t, []map[string]any{
		{"id": "claim-9", "tier": 2, "summary": "FTC v. Meridian Wellness"},
	})
	h := &CourtRecordHandler{searcher: &fakeSearcher{}, verifier: verifier, logger: zap.NewNop()}
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:       "c4",
		Type:     "court_record",
		CaseName: "FTC v. Meridian",
	}, led)

	assert.Len(t, led.Upgrades(), 1)
	assert.Empty(t, reaction.CaseNumber)
}

func TestCourtRecord_MissingVerificationCorpus(t *testing.T) {
	// No verification document at all: zero verified items, handler
	// still completes.
	h := &CourtRecordHandler{
		searcher: &fakeSearcher{},
		verifier: newMissingLoader(t),
		logger:   zap.NewNop(),
	}
	led := state.NewLedger(0)

	reaction := h.Handle(context.Background(), model.EvidenceItem{
		ID:         "c5",
		Type:       "court_record",
		CaseNumber: "2:24-cv-01034",
	}, led)

	require.Len(t, reaction.Actions, 1)
	assert.Equal(t, 0, reaction.Actions[0].VerifiedItems)
	assert.Equal(t, 1, led.TotalReactions())
}
