// Package pipeline drives the reactive loop: poll the feed, classify
// the unseen items, dispatch handlers in feed order, flush state.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/certainly-project/gapfill/internal/cache"
	"github.com/certainly-project/gapfill/internal/classify"
	"github.com/certainly-project/gapfill/internal/corpus"
	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/state"
	"github.com/certainly-project/gapfill/internal/trigger"
	"github.com/certainly-project/gapfill/internal/verify"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Processor owns the engine state and runs the polling loop. Items are
// handled strictly in feed order by a single execution context, so the
// ordering of tier upgrades and priority flags in the persisted logs
// matches discovery order.
type Processor struct {
	cfg      *model.Config
	store    *state.Store
	ledger   *state.Ledger
	handlers *trigger.Set
	logger   *zap.Logger
	runID    string
}

// New builds a processor from configuration: corpus searcher (with
// layered result cache and rate limit), verification loader, handler
// set, and the ledger restored from the last persisted state.
func New(cfg *model.Config, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []corpus.Option{
		corpus.WithTimeout(cfg.Corpus.SearchTimeout),
		corpus.WithMaxFileBytes(cfg.Corpus.MaxFileBytes),
	}
	if cfg.Corpus.SearchesPerSecond > 0 {
		opts = append(opts, corpus.WithRateLimit(cfg.Corpus.SearchesPerSecond, cfg.Corpus.Burst))
	}
	if cfg.Corpus.CacheEnabled {
		layered := cache.NewLayeredCache(cfg.Corpus.CacheTTL, cfg.SearchCacheDir(), cfg.Corpus.CacheTTL)
		opts = append(opts, corpus.WithCache(layered, cfg.Corpus.CacheTTL))
	}
	searcher := corpus.NewDirSearcher(cfg.Corpus.Roots, logger, opts...)

	return newProcessor(cfg, searcher, logger)
}

// NewWithSearcher builds a processor over an externally supplied search
// capability, e.g. an in-process index.
func NewWithSearcher(cfg *model.Config, searcher corpus.Searcher, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newProcessor(cfg, searcher, logger)
}

func newProcessor(cfg *model.Config, searcher corpus.Searcher, logger *zap.Logger) *Processor {
	verifier := verify.NewLoader(cfg.VerificationPath(), logger)
	store := state.NewStore(cfg, logger)

	return &Processor{
		cfg:      cfg,
		store:    store,
		ledger:   store.Load(cfg.Retention.MemoryWindow),
		handlers: trigger.NewSet(searcher, verifier, logger),
		logger:   logger,
		runID:    newRunID(),
	}
}

func newRunID() string {
	return fmt.Sprintf("gapfill-reactive-%s-%s",
		time.Now().UTC().Format("20060102"), uuid.NewString()[:8])
}

// RunID returns the identifier stamped on this run's reaction log.
func (p *Processor) RunID() string {
	return p.runID
}

// Ledger exposes the engine state for read-only inspection.
func (p *Processor) Ledger() *state.Ledger {
	return p.ledger
}

// Run polls the feed until ctx is canceled, then flushes once more on
// the way out. With watch enabled, writes to the feed file wake the
// loop early; the timer stays on as a fallback either way.
func (p *Processor) Run(ctx context.Context) error {
	p.logger.Info("reactive processor starting",
		zap.String("run_id", p.runID),
		zap.String("feed", p.store.FeedPath()),
		zap.Duration("interval", p.cfg.Poll.Interval),
		zap.Int("processed", p.ledger.ProcessedCount()))

	if err := p.PollOnce(ctx); err != nil {
		p.logger.Warn("initial poll failed", zap.Error(err))
	}

	var wake <-chan struct{}
	if p.cfg.Poll.Watch {
		ch, closeWatch, err := p.watchFeed(ctx)
		if err != nil {
			p.logger.Warn("feed watch unavailable, timer only", zap.Error(err))
		} else {
			wake = ch
			defer closeWatch()
		}
	}

	ticker := time.NewTicker(p.cfg.Poll.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down, final flush")
			if err := p.store.Flush(p.ledger, p.runID, "stopped"); err != nil {
				return fmt.Errorf("final flush: %w", err)
			}
			return nil
		case <-ticker.C:
		case <-wake:
		}

		if err := p.PollOnce(ctx); err != nil {
			p.logger.Warn("poll failed", zap.Error(err))
		}
	}
}

// PollOnce reads the feed, processes every unseen item in feed order,
// and flushes state when anything was processed.
func (p *Processor) PollOnce(ctx context.Context) error {
	feed, err := p.store.ReadFeed()
	if err != nil {
		return err
	}

	batch := 0
	for _, item := range feed.Items {
		id := item.Identifier()
		if p.ledger.Processed(id) {
			continue
		}

		trig := classify.Classify(item)
		if h := p.handlers.For(trig); h != nil {
			reaction := h.Handle(ctx, item, p.ledger)
			p.logger.Info("reaction recorded",
				zap.String("item_id", id),
				zap.String("trigger", string(reaction.Trigger)),
				zap.Int("actions", len(reaction.Actions)),
				zap.Stringer("tier", reaction.TierAssigned))
		} else {
			// Generic items carry no recognizable shape: marked
			// processed, nothing enters the ledger.
			p.logger.Debug("generic item, no reaction", zap.String("item_id", id))
		}

		p.ledger.MarkProcessed(id)
		batch++
	}

	if batch == 0 {
		return nil
	}

	p.logger.Info("batch processed",
		zap.Int("items", batch),
		zap.Int("tier_upgrades", len(p.ledger.Upgrades())),
		zap.Int("priority_flags", len(p.ledger.Flags())))

	if err := p.store.Flush(p.ledger, p.runID, "running"); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// watchFeed wakes the loop when the feed file is written. The parent
// directory is watched because producers (and this engine's own store)
// replace files by rename. Events are debounced: a burst of writes
// costs one poll.
func (p *Processor) watchFeed(ctx context.Context) (<-chan struct{}, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	feedPath := p.store.FeedPath()
	if err := watcher.Add(filepath.Dir(feedPath)); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	wake := make(chan struct{}, 1)
	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(feedPath) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(p.cfg.Poll.Debounce, func() {
					select {
					case wake <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.logger.Warn("feed watch error", zap.Error(err))
			}
		}
	}()

	return wake, func() { _ = watcher.Close() }, nil
}
