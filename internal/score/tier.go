// Package score converts corroboration counts into confidence tiers and
// escalation decisions. All thresholds live here so the handlers share
// one scale.
package score

import "github.com/certainly-project/gapfill/internal/model"

const (
	// corroboratedSources is the effective-source count at which a
	// claim is considered independently corroborated (tier 2).
	corroboratedSources = 3

	// VictimInterviewMin is the corroboration count that escalates a
	// victim report to a victim_interview priority flag.
	VictimInterviewMin = 2

	// CorporateRecordsMin is the distinct-file count that escalates an
	// entity discovery to a corporate_records_search priority flag.
	CorporateRecordsMin = 2

	// WireFraudMin is the total occurrence count across the corpus at
	// which promoted video evidence becomes a wire_fraud_pattern flag.
	WireFraudMin = 10
)

// TierForSources maps an effective-source count onto the confidence
// scale: 3 or more sources earn tier 2, at least one earns tier 3, and a
// claim with no corroboration at all is flagged.
func TierForSources(sources int) model.Tier {
	switch {
	case sources >= corroboratedSources:
		return model.TierCorrob
	case sources >= 1:
		return model.TierSingle
	default:
		return model.TierFlagged
	}
}
