package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/certainly-project/gapfill/internal/model"
	"go.uber.org/zap"
)

// ReactionLog is the persisted reaction-log document. Other agents read
// it; only this engine writes it.
type ReactionLog struct {
	RunID             string           `json:"run_id"`
	Status            string           `json:"status"`
	LastUpdated       time.Time        `json:"last_updated"`
	LastTimestamp     int64            `json:"last_timestamp"`
	ProcessedItems    []string         `json:"processed_items"`
	TotalReactions    int              `json:"total_reactions"`
	TierUpgradesCount int              `json:"tier_upgrades_count"`
	HighPriorityCount int              `json:"high_priority_count"`
	Reactions         []model.Reaction `json:"reactions"`
}

// UpgradeLog is the persisted tier-upgrades document.
type UpgradeLog struct {
	LastUpdated time.Time           `json:"last_updated"`
	Upgrades    []model.TierUpgrade `json:"upgrades"`
}

// FlagLog is the persisted priority-flags document.
type FlagLog struct {
	LastUpdated time.Time            `json:"last_updated"`
	Flags       []model.PriorityFlag `json:"flags"`
}

// Store persists and reloads engine state as JSON documents under the
// coordination directory. Writes go through a temp file and rename so a
// crash mid-flush never leaves a torn document behind.
type Store struct {
	reactionLogPath  string
	tierUpgradesPath string
	priorityFlagPath string
	feedPath         string
	persistWindow    int
	logger           *zap.Logger
}

// NewStore creates a store over the configured coordination documents.
func NewStore(cfg *model.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		reactionLogPath:  cfg.ReactionLogPath(),
		tierUpgradesPath: cfg.TierUpgradesPath(),
		priorityFlagPath: cfg.PriorityFlagsPath(),
		feedPath:         cfg.FeedPath(),
		persistWindow:    cfg.Retention.PersistWindow,
		logger:           logger,
	}
}

// Load restores the processed set from the last successfully persisted
// reaction log. A missing document yields an empty ledger; a malformed
// one is logged and also yields an empty ledger, so a corrupted file
// never blocks startup.
func (s *Store) Load(memoryWindow int) *Ledger {
	led := NewLedger(memoryWindow)

	data, err := os.ReadFile(s.reactionLogPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("reaction log unreadable, starting fresh",
				zap.String("path", s.reactionLogPath), zap.Error(err))
		}
		return led
	}

	var log ReactionLog
	if err := json.Unmarshal(data, &log); err != nil {
		s.logger.Warn("reaction log malformed, starting fresh",
			zap.String("path", s.reactionLogPath), zap.Error(err))
		return led
	}

	for _, id := range log.ProcessedItems {
		led.MarkProcessed(id)
	}
	return led
}

// Flush writes the three output documents. The reaction log keeps only
// the most recent persistWindow reactions; upgrades and flags are
// written in full.
func (s *Store) Flush(led *Ledger, runID, status string) error {
	now := time.Now().UTC()

	log := ReactionLog{
		RunID:             runID,
		Status:            status,
		LastUpdated:       now,
		LastTimestamp:     now.UnixMilli(),
		ProcessedItems:    led.ProcessedItems(),
		TotalReactions:    led.TotalReactions(),
		TierUpgradesCount: len(led.Upgrades()),
		HighPriorityCount: len(led.Flags()),
		Reactions:         led.RecentReactions(s.persistWindow),
	}
	if err := writeJSON(s.reactionLogPath, log); err != nil {
		return fmt.Errorf("flush reaction log: %w", err)
	}

	if err := writeJSON(s.tierUpgradesPath, UpgradeLog{LastUpdated: now, Upgrades: led.Upgrades()}); err != nil {
		return fmt.Errorf("flush tier upgrades: %w", err)
	}

	if err := writeJSON(s.priorityFlagPath, FlagLog{LastUpdated: now, Flags: led.Flags()}); err != nil {
		return fmt.Errorf("flush priority flags: %w", err)
	}

	return nil
}

// ReadFeed reads the live feed document, creating an empty one when it
// does not exist. A malformed feed is logged and read as empty so a bad
// producer write never wedges the poll loop.
func (s *Store) ReadFeed() (*model.Feed, error) {
	data, err := os.ReadFile(s.feedPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		feed := model.NewFeed()
		if err := writeJSON(s.feedPath, feed); err != nil {
			return nil, fmt.Errorf("create feed: %w", err)
		}
		s.logger.Info("created empty feed", zap.String("path", s.feedPath))
		return feed, nil
	}

	var feed model.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		s.logger.Warn("feed malformed, treating as empty",
			zap.String("path", s.feedPath), zap.Error(err))
		return model.NewFeed(), nil
	}
	return &feed, nil
}

// FeedPath returns the path of the live feed document.
func (s *Store) FeedPath() string {
	return s.feedPath
}

// AppendFeedItem appends one item to the feed document on behalf of a
// producer, stamping discovered_at and last_updated. This is the write
// side used by the emit command, not by the engine.
func AppendFeedItem(path string, item model.EvidenceItem) (*model.Feed, error) {
	feed := model.NewFeed()
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, feed); err != nil {
			return nil, fmt.Errorf("parse feed: %w", err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if item.DiscoveredAt == "" {
		item.DiscoveredAt = now
	}
	feed.Items = append(feed.Items, item)
	feed.LastUpdated = now

	if err := writeJSON(path, feed); err != nil {
		return nil, fmt.Errorf("append feed item: %w", err)
	}
	return feed, nil
}

// writeJSON writes v as indented JSON via temp-file-and-rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
