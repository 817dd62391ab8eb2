package classify

import (
	"testing"

	"github.com/certainly-project/gapfill/internal/model"
)

func TestClassify_ByType(t *testing.T) {
	tests := []struct {
		name string
		item model.EvidenceItem
		want model.Trigger
	}{
		{"victim report type", model.EvidenceItem{Type: "victim_report"}, model.TriggerVictimReport},
		{"victim testimony category", model.EvidenceItem{Category: "victim_testimony"}, model.TriggerVictimReport},
		{"victim name in metadata", model.EvidenceItem{Metadata: model.Metadata{VictimName: "Jane"}}, model.TriggerVictimReport},
		{"court record type", model.EvidenceItem{Type: "court_record"}, model.TriggerCourtRecord},
		{"case number top-level", model.EvidenceItem{CaseNumber: "2:24-cv-01034"}, model.TriggerCourtRecord},
		{"case number in metadata", model.EvidenceItem{Metadata: model.Metadata{CaseNumber: "2:24-cv-01034"}}, model.TriggerCourtRecord},
		{"video evidence type", model.EvidenceItem{Type: "video_evidence"}, model.TriggerVideoEvidence},
		{"video url top-level", model.EvidenceItem{VideoURL: "https://x/y"}, model.TriggerVideoEvidence},
		{"entity type", model.EvidenceItem{Type: "entity"}, model.TriggerNewEntity},
		{"entity name top-level", model.EvidenceItem{EntityName: "Acme"}, model.TriggerNewEntity},
		{"blockchain category", model.EvidenceItem{Category: "blockchain"}, model.TriggerBlockchainVictim},
		{"wallet in metadata", model.EvidenceItem{Metadata: model.Metadata{WalletAddress: "0xABC"}}, model.TriggerBlockchainVictim},
		{"no recognizable fields", model.EvidenceItem{ID: "z1"}, model.TriggerGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.item); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// An item satisfying both the victim and court shapes is a victim
	// report: earlier rules win.
	item := model.EvidenceItem{
		CaseNumber: "2:24-cv-01034",
		Metadata:   model.Metadata{VictimName: "Jane"},
	}
	if got := Classify(item); got != model.TriggerVictimReport {
		t.Errorf("Classify() = %v, want %v", got, model.TriggerVictimReport)
	}

	// Court outranks video.
	item = model.EvidenceItem{
		CaseNumber: "2:24-cv-01034",
		VideoURL:   "https://x/y",
	}
	if got := Classify(item); got != model.TriggerCourtRecord {
		t.Errorf("Classify() = %v, want %v", got, model.TriggerCourtRecord)
	}

	// The blockchain fallback only applies when no stronger shape matched.
	item = model.EvidenceItem{
		Type:     "entity",
		Metadata: model.Metadata{WalletAddress: "0xABC"},
	}
	if got := Classify(item); got != model.TriggerNewEntity {
		t.Errorf("Classify() = %v, want %v", got, model.TriggerNewEntity)
	}
}
