// Package classify routes evidence items to trigger handlers by shape.
//
// Feed items are heterogeneous and may satisfy several shapes at once, so
// classification uses a fixed priority order; the first matching rule
// wins. An item carrying both a victim name and a case number is a victim
// report, never a court record.
package classify

import "github.com/certainly-project/gapfill/internal/model"

// Classify determines which trigger an item fires. Items matching no
// rule are Generic: they are marked processed but produce no reaction.
func Classify(item model.EvidenceItem) model.Trigger {
	switch {
	case item.Type == "victim_report" ||
		item.Category == "victim_testimony" ||
		item.Metadata.VictimName != "":
		return model.TriggerVictimReport

	case item.Type == "court_record" ||
		item.CaseNumber != "" ||
		item.Metadata.CaseNumber != "":
		return model.TriggerCourtRecord

	case item.Type == "video_evidence" ||
		item.VideoURL != "" ||
		item.Metadata.VideoURL != "":
		return model.TriggerVideoEvidence

	case item.Type == "entity" ||
		item.EntityName != "" ||
		item.Metadata.EntityName != "":
		return model.TriggerNewEntity

	case item.Category == "blockchain" ||
		item.Metadata.WalletAddress != "":
		return model.TriggerBlockchainVictim

	default:
		return model.TriggerGeneric
	}
}
