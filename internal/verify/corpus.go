// Package verify loads the externally maintained verification corpus of
// candidate claims and matches them against court references. The court
// handler re-reads the document on every court record, so claims added
// between polls are picked up without a restart.
package verify

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/certainly-project/gapfill/internal/model"
	"go.uber.org/zap"
)

// Candidate is one claim in the verification corpus. The raw document is
// kept alongside the decoded fields because matching is a substring test
// over the claim's full serialized text, whatever its shape.
type Candidate struct {
	ID   string
	Tier model.Tier
	raw  string
}

type candidateFields struct {
	ID   string     `json:"id"`
	Tier model.Tier `json:"tier"`
}

// Loader reads the verification corpus document.
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a loader for the document at path.
func NewLoader(path string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, logger: logger}
}

// Load reads all candidates. A missing or malformed document yields an
// empty slice: verification is best effort and never fails a handler.
func (l *Loader) Load() []Candidate {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("verification corpus unreadable",
				zap.String("path", l.path), zap.Error(err))
		}
		return nil
	}

	var doc struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		l.logger.Warn("verification corpus malformed",
			zap.String("path", l.path), zap.Error(err))
		return nil
	}

	candidates := make([]Candidate, 0, len(doc.Items))
	for _, raw := range doc.Items {
		var f candidateFields
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:   f.ID,
			Tier: f.Tier,
			raw:  strings.ToLower(string(raw)),
		})
	}
	return candidates
}

// References reports whether the candidate's serialized text mentions
// the case reference, case-insensitively. An empty reference matches
// nothing.
func (c Candidate) References(caseRef string) bool {
	if caseRef == "" {
		return false
	}
	return strings.Contains(c.raw, strings.ToLower(caseRef))
}
