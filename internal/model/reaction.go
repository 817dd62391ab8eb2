package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Trigger classifies the kind of discovery an evidence item represents
type Trigger string

const (
	TriggerVictimReport  Trigger = "victim_report"
	TriggerCourtRecord   Trigger = "court_record"
	TriggerVideoEvidence Trigger = "video_evidence"
	TriggerNewEntity     Trigger = "new_entity"
	// TriggerBlockchainVictim routes to the victim-report handler:
	// blockchain evidence is treated as a victim claim proxy.
	TriggerBlockchainVictim Trigger = "blockchain_victim"
	TriggerGeneric          Trigger = "generic"
)

// Tier is the confidence ranking of a claim. Numerically lower is better:
// 1 is court-verified, 3 is a single-source claim, and flagged sits below
// all numeric tiers as the uncorroborated floor.
type Tier int8

const (
	TierUnset      Tier = 0
	TierVerified   Tier = 1
	TierCorrob     Tier = 2
	TierSingle     Tier = 3
	TierFlagged    Tier = 4
	tierFlaggedTag      = "flagged"
)

func (t Tier) String() string {
	switch t {
	case TierVerified, TierCorrob, TierSingle:
		return fmt.Sprintf("%d", int(t))
	case TierFlagged:
		return tierFlaggedTag
	default:
		return "unset"
	}
}

// Better reports whether t is a strictly higher-confidence tier than other.
func (t Tier) Better(other Tier) bool {
	return t != TierUnset && (other == TierUnset || t < other)
}

// Upgradable reports whether the court-record handler may promote this
// tier to verified. Tier 3 claims are deliberately excluded: single-source
// claims need corroboration before a court reference can verify them.
func (t Tier) Upgradable() bool {
	return t == TierCorrob || t == TierFlagged
}

// MarshalJSON writes numeric tiers as JSON numbers and the flagged floor
// as the string "flagged", matching the documents other agents consume.
func (t Tier) MarshalJSON() ([]byte, error) {
	switch t {
	case TierVerified, TierCorrob, TierSingle:
		return json.Marshal(int(t))
	case TierFlagged:
		return json.Marshal(tierFlaggedTag)
	default:
		return json.Marshal(nil)
	}
}

// UnmarshalJSON accepts numeric tiers, "flagged", and null.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 1 || n > 3 {
			return fmt.Errorf("tier out of range: %d", n)
		}
		*t = Tier(n)
		return nil
	}
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid tier: %s", string(data))
	}
	if s == nil {
		*t = TierUnset
		return nil
	}
	if *s != tierFlaggedTag {
		return fmt.Errorf("invalid tier: %q", *s)
	}
	*t = TierFlagged
	return nil
}

// ActionKind names a step a handler took or scheduled for an item.
type ActionKind string

const (
	ActionWalletMatch          ActionKind = "wallet_match"
	ActionNameMention          ActionKind = "name_mention"
	ActionClaimVerification    ActionKind = "claim_verification"
	ActionAmountCrossReference ActionKind = "amount_cross_reference"
	ActionURLPromotion         ActionKind = "url_promotion"
	ActionTranscriptExtraction ActionKind = "transcript_extraction"
	ActionArchiveVideo         ActionKind = "archive_video"
	ActionCorpusSearch         ActionKind = "corpus_search"
	ActionUpdateEntityMap      ActionKind = "update_entity_map"
)

// Action is one entry in a reaction's ordered action list. The payload is
// kind-specific; unused fields stay empty and are omitted on the wire.
type Action struct {
	Kind ActionKind `json:"action"`

	Wallet   string `json:"wallet,omitempty"`
	Victim   string `json:"victim,omitempty"`
	Entity   string `json:"entity,omitempty"`
	Amount   string `json:"amount,omitempty"`
	VideoURL string `json:"video_url,omitempty"`

	Sources            int      `json:"sources,omitempty"`
	Mentions           int      `json:"mentions,omitempty"`
	EffectiveSources   int      `json:"effective_sources,omitempty"`
	WireFraudInstances int      `json:"wire_fraud_instances,omitempty"`
	Connections        int      `json:"connections,omitempty"`
	VerifiedItems      int      `json:"verified_items,omitempty"`
	Items              []string `json:"items,omitempty"`
	Files              []string `json:"files,omitempty"`

	Purpose  string `json:"purpose,omitempty"`
	Priority string `json:"priority,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Reaction records how the engine reacted to one processed item. Created
// exactly once per item, then immutable.
type Reaction struct {
	Trigger   Trigger   `json:"trigger"`
	Timestamp time.Time `json:"timestamp"`
	ItemID    string    `json:"item_id"`

	VictimName string `json:"victim_name,omitempty"`
	CaseNumber string `json:"case_number,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	EntityName string `json:"entity_name,omitempty"`

	Actions []Action `json:"actions"`

	TierAssigned     Tier `json:"tier_assigned,omitempty"`
	EffectiveSources *int `json:"effective_sources,omitempty"`
}

// SetSources records the effective-source count, including an explicit zero.
func (r *Reaction) SetSources(n int) {
	r.EffectiveSources = &n
}

// TierUpgrade promotes a previously recorded claim to a better tier.
// Only the court-record handler emits these. Append-only.
type TierUpgrade struct {
	ItemID    string    `json:"item_id"`
	FromTier  Tier      `json:"from_tier"`
	ToTier    Tier      `json:"to_tier"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// FlagType names the kind of human follow-up a priority flag requests.
type FlagType string

const (
	FlagVictimInterview  FlagType = "victim_interview"
	FlagWireFraudPattern FlagType = "wire_fraud_pattern"
	FlagCorporateRecords FlagType = "corporate_records_search"
)

// PriorityFlag is an escalation record signaling a claim needs human
// follow-up. Append-only.
type PriorityFlag struct {
	Type   FlagType `json:"type"`
	ItemID string   `json:"item_id"`

	VictimName string `json:"victim_name,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	Count      int    `json:"count,omitempty"`
	Mentions   int    `json:"mentions,omitempty"`

	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
