package state

import (
	"github.com/certainly-project/gapfill/internal/model"
)

// Ledger is the engine's mutable state: the processed set, the reaction
// history, tier upgrades and priority flags. It is owned by the poller
// and mutated only from the poller's single execution context; handlers
// receive it by reference and append through it.
//
// The reaction history is bounded in memory (memoryWindow) because only
// a trailing window is ever persisted; the processed set is never
// evicted, it is the sole exactly-once guard.
type Ledger struct {
	processed     map[string]struct{}
	processedList []string

	reactions      []model.Reaction
	totalReactions int
	memoryWindow   int

	upgrades []model.TierUpgrade
	flags    []model.PriorityFlag

	// bestTier tracks the best tier recorded per item within this run,
	// enforcing tier monotonicity across corroboration passes.
	bestTier map[string]model.Tier
}

// NewLedger creates an empty ledger. memoryWindow bounds the in-memory
// reaction history; zero or negative means unbounded.
func NewLedger(memoryWindow int) *Ledger {
	return &Ledger{
		processed:    make(map[string]struct{}),
		memoryWindow: memoryWindow,
		bestTier:     make(map[string]model.Tier),
	}
}

// Processed reports whether an item identifier has already been handled.
func (l *Ledger) Processed(id string) bool {
	_, ok := l.processed[id]
	return ok
}

// MarkProcessed adds an identifier to the processed set. Adding the same
// identifier twice is a no-op.
func (l *Ledger) MarkProcessed(id string) {
	if _, ok := l.processed[id]; ok {
		return
	}
	l.processed[id] = struct{}{}
	l.processedList = append(l.processedList, id)
}

// ProcessedCount returns the cardinality of the processed set.
func (l *Ledger) ProcessedCount() int {
	return len(l.processed)
}

// ProcessedItems returns processed identifiers in insertion order.
func (l *Ledger) ProcessedItems() []string {
	out := make([]string, len(l.processedList))
	copy(out, l.processedList)
	return out
}

// AppendReaction appends to the reaction history, evicting the oldest
// in-memory entry once the window is full. The total count keeps
// growing regardless of eviction.
func (l *Ledger) AppendReaction(r model.Reaction) {
	l.reactions = append(l.reactions, r)
	l.totalReactions++
	if l.memoryWindow > 0 && len(l.reactions) > l.memoryWindow {
		l.reactions = l.reactions[len(l.reactions)-l.memoryWindow:]
	}
	if r.TierAssigned != model.TierUnset {
		l.recordTier(r.ItemID, r.TierAssigned)
	}
}

// Reactions returns the retained reaction history, oldest first.
func (l *Ledger) Reactions() []model.Reaction {
	out := make([]model.Reaction, len(l.reactions))
	copy(out, l.reactions)
	return out
}

// TotalReactions returns the lifetime reaction count for this run.
func (l *Ledger) TotalReactions() int {
	return l.totalReactions
}

// RecentReactions returns at most n of the newest reactions, oldest
// first (the persisted view of the history).
func (l *Ledger) RecentReactions(n int) []model.Reaction {
	if n <= 0 || n >= len(l.reactions) {
		return l.Reactions()
	}
	out := make([]model.Reaction, n)
	copy(out, l.reactions[len(l.reactions)-n:])
	return out
}

// AppendUpgrade records a tier upgrade unless it would conflict with a
// better tier already recorded for the item. Returns whether the
// upgrade was recorded.
func (l *Ledger) AppendUpgrade(u model.TierUpgrade) bool {
	if best, ok := l.bestTier[u.ItemID]; ok && !u.ToTier.Better(best) {
		return false
	}
	l.upgrades = append(l.upgrades, u)
	l.recordTier(u.ItemID, u.ToTier)
	return true
}

// Upgrades returns all tier upgrades recorded this run, in order.
func (l *Ledger) Upgrades() []model.TierUpgrade {
	out := make([]model.TierUpgrade, len(l.upgrades))
	copy(out, l.upgrades)
	return out
}

// AppendFlag records a priority flag.
func (l *Ledger) AppendFlag(f model.PriorityFlag) {
	l.flags = append(l.flags, f)
}

// Flags returns all priority flags recorded this run, in order.
func (l *Ledger) Flags() []model.PriorityFlag {
	out := make([]model.PriorityFlag, len(l.flags))
	copy(out, l.flags)
	return out
}

// BestTier returns the best tier recorded for an item this run, or
// TierUnset when none was.
func (l *Ledger) BestTier(id string) model.Tier {
	return l.bestTier[id]
}

func (l *Ledger) recordTier(id string, t model.Tier) {
	if best, ok := l.bestTier[id]; !ok || t.Better(best) {
		l.bestTier[id] = t
	}
}
