package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// EvidenceItem is one investigative finding from the live feed. Producers
// write heterogeneous records; every optional field used for classification
// is decoded up front so the trigger handlers never probe raw documents.
type EvidenceItem struct {
	ID         string `json:"id,omitempty"`
	EvidenceID string `json:"evidence_id,omitempty"`
	Type       string `json:"type,omitempty"`
	Category   string `json:"category,omitempty"`

	VictimName    string `json:"victim_name,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	CaseNumber    string `json:"case_number,omitempty"`
	CaseName      string `json:"case_name,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	EntityName    string `json:"entity_name,omitempty"`
	Amount        Amount `json:"amount,omitempty"`

	Claim        string   `json:"claim,omitempty"`
	Source       string   `json:"source,omitempty"`
	DiscoveredAt string   `json:"discovered_at,omitempty"`
	Metadata     Metadata `json:"metadata,omitempty"`
}

// Metadata holds the nested optional keys producers attach to items.
type Metadata struct {
	VictimName    string `json:"victim_name,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
	CaseNumber    string `json:"case_number,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	EntityName    string `json:"entity_name,omitempty"`
}

// Amount is a monetary value that producers write either as a JSON number
// or as a formatted string ("$50,000").
type Amount string

// UnmarshalJSON accepts both string and numeric encodings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

// Digits strips everything but digits and the decimal point, the form
// amounts take in ledger CSV exports.
func (a Amount) Digits() string {
	var b strings.Builder
	for _, r := range string(a) {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Identifier resolves the item identity: evidence_id wins over id. When
// neither is present a stable identifier is derived from the item content,
// so an unlabeled item is still processed exactly once across polls.
func (i EvidenceItem) Identifier() string {
	if i.EvidenceID != "" {
		return i.EvidenceID
	}
	if i.ID != "" {
		return i.ID
	}
	raw, err := json.Marshal(i)
	if err != nil {
		return "item_unknown"
	}
	sum := sha256.Sum256(raw)
	return "item_" + hex.EncodeToString(sum[:6])
}

// ResolveVictimName prefers the metadata key over the top-level field.
func (i EvidenceItem) ResolveVictimName() string {
	if i.Metadata.VictimName != "" {
		return i.Metadata.VictimName
	}
	return i.VictimName
}

// ResolveWalletAddress prefers the metadata key over the top-level field.
func (i EvidenceItem) ResolveWalletAddress() string {
	if i.Metadata.WalletAddress != "" {
		return i.Metadata.WalletAddress
	}
	return i.WalletAddress
}

// ResolveCaseNumber prefers the top-level field over the metadata key.
func (i EvidenceItem) ResolveCaseNumber() string {
	if i.CaseNumber != "" {
		return i.CaseNumber
	}
	return i.Metadata.CaseNumber
}

// CaseReference returns the case number, falling back to the case name.
func (i EvidenceItem) CaseReference() string {
	if ref := i.ResolveCaseNumber(); ref != "" {
		return ref
	}
	return i.CaseName
}

// ResolveVideoURL prefers the top-level field over the metadata key.
func (i EvidenceItem) ResolveVideoURL() string {
	if i.VideoURL != "" {
		return i.VideoURL
	}
	return i.Metadata.VideoURL
}

// ResolveEntityName prefers the top-level field over the metadata key.
func (i EvidenceItem) ResolveEntityName() string {
	if i.EntityName != "" {
		return i.EntityName
	}
	return i.Metadata.EntityName
}

// Feed is the live evidence feed document. The engine reads it; only the
// producer side appends to it.
type Feed struct {
	Created     string         `json:"created,omitempty"`
	LastUpdated string         `json:"last_updated,omitempty"`
	Items       []EvidenceItem `json:"items"`
}

// NewFeed returns an empty feed document stamped with the current time.
func NewFeed() *Feed {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Feed{
		Created:     now,
		LastUpdated: now,
		Items:       []EvidenceItem{},
	}
}
