// Package trigger implements the four trigger handlers. Each handler
// runs the corpus searches relevant to its evidence type, accumulates an
// ordered action list into a reaction, and escalates through the ledger
// when corroboration thresholds are met.
//
// Handlers never fail an item: a search error or missing field produces
// a degraded reaction, and the item is still marked processed upstream.
// There is no retry state.
package trigger

import (
	"context"

	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/certainly-project/gapfill/internal/verify"
	"go.uber.org/zap"
)

// Handler reacts to one classified evidence item. It returns the
// reaction it appended to the ledger, or nil when the item produced none.
type Handler interface {
	Handle(ctx context.Context, item model.EvidenceItem, led *state.Ledger) *model.Reaction
}

// Set maps triggers onto their handlers. The blockchain trigger shares
// the victim-report handler: blockchain evidence is a victim claim proxy.
type Set struct {
	handlers map[model.Trigger]Handler
}

// NewSet wires the four handlers over a shared searcher and the
// verification corpus loader.
func NewSet(searcher corpus.Searcher, verifier *verify.Loader, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	victim := &VictimReportHandler{searcher: searcher, logger: logger}
	return &Set{
		handlers: map[model.Trigger]Handler{
			model.TriggerVictimReport:     victim,
			model.TriggerBlockchainVictim: victim,
			model.TriggerCourtRecord:      &CourtRecordHandler{searcher: searcher, verifier: verifier, logger: logger},
			model.TriggerVideoEvidence:    &VideoEvidenceHandler{searcher: searcher, logger: logger},
			model.TriggerNewEntity:        &EntityDiscoveryHandler{searcher: searcher, logger: logger},
		},
	}
}

// For returns the handler for a trigger, or nil for generic items.
func (s *Set) For(t model.Trigger) Handler {
	return s.handlers[t]
}

// search runs one corpus search, degrading to empty results on error.
func search(ctx context.Context, s corpus.Searcher, logger *zap.Logger, pattern, fileType string) []corpus.Match {
	results, err := s.Search(ctx, pattern, fileType)
	if err != nil {
		logger.Warn("corpus search failed", zap.String("pattern", pattern), zap.Error(err))
		return nil
	}
	return results
}

func matchFiles(matches []corpus.Match) []string {
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = m.File
	}
	return files
}

func matchCountSum(matches []corpus.Match) int {
	sum := 0
	for _, m := range matches {
		sum += m.Count
	}
	return sum
}
