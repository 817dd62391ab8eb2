package model

import (
	"path/filepath"
	"time"
)

// Config is the full runtime configuration, assembled from defaults,
// the config file, GAPFILL_* environment variables and CLI flags.
type Config struct {
	Coordination CoordinationConfig `yaml:"coordination" json:"coordination"`
	Corpus       CorpusConfig       `yaml:"corpus" json:"corpus"`
	Poll         PollConfig         `yaml:"poll" json:"poll"`
	Retention    RetentionConfig    `yaml:"retention" json:"retention"`
	Output       OutputConfig       `yaml:"output" json:"output"`
}

// CoordinationConfig locates the shared coordination documents.
// All file names are resolved relative to Dir unless absolute.
type CoordinationConfig struct {
	Dir               string `yaml:"dir" json:"dir"`
	FeedFile          string `yaml:"feed_file" json:"feed_file"`
	ReactionLogFile   string `yaml:"reaction_log_file" json:"reaction_log_file"`
	TierUpgradesFile  string `yaml:"tier_upgrades_file" json:"tier_upgrades_file"`
	PriorityFlagsFile string `yaml:"priority_flags_file" json:"priority_flags_file"`
	VerificationFile  string `yaml:"verification_file" json:"verification_file"`
}

// CorpusConfig controls the corpus search capability.
type CorpusConfig struct {
	Roots             []string      `yaml:"roots" json:"roots"`
	SearchTimeout     time.Duration `yaml:"search_timeout" json:"search_timeout"`
	SearchesPerSecond float64       `yaml:"searches_per_second" json:"searches_per_second"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxFileBytes      int64         `yaml:"max_file_bytes" json:"max_file_bytes"`
	CacheEnabled      bool          `yaml:"cache_enabled" json:"cache_enabled"`
	CacheDir          string        `yaml:"cache_dir" json:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// PollConfig controls the feed polling loop.
type PollConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
	Watch    bool          `yaml:"watch" json:"watch"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// RetentionConfig bounds the in-memory and persisted reaction history.
// The processed set is never evicted: it is the sole de-duplication guard.
type RetentionConfig struct {
	MemoryWindow  int `yaml:"memory_window" json:"memory_window"`
	PersistWindow int `yaml:"persist_window" json:"persist_window"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Coordination: CoordinationConfig{
			Dir:               "./coordination",
			FeedFile:          "live_evidence_feed.json",
			ReactionLogFile:   "gap_fill_reactive_log.json",
			TierUpgradesFile:  "tier_upgrades_live.json",
			PriorityFlagsFile: "high_priority_flags.json",
			VerificationFile:  "validated_evidence.json",
		},
		Corpus: CorpusConfig{
			Roots:             []string{},
			SearchTimeout:     30 * time.Second,
			SearchesPerSecond: 10,
			Burst:             5,
			MaxFileBytes:      10 * 1024 * 1024,
			CacheEnabled:      true,
			CacheDir:          "",
			CacheTTL:          5 * time.Minute,
		},
		Poll: PollConfig{
			Interval: 5 * time.Second,
			Watch:    false,
			Debounce: 500 * time.Millisecond,
		},
		Retention: RetentionConfig{
			MemoryWindow:  1000,
			PersistWindow: 100,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}

// FeedPath returns the absolute-ish path of the live feed document.
func (c *Config) FeedPath() string {
	return c.coordPath(c.Coordination.FeedFile)
}

// ReactionLogPath returns the path of the reaction log document.
func (c *Config) ReactionLogPath() string {
	return c.coordPath(c.Coordination.ReactionLogFile)
}

// TierUpgradesPath returns the path of the tier upgrades document.
func (c *Config) TierUpgradesPath() string {
	return c.coordPath(c.Coordination.TierUpgradesFile)
}

// PriorityFlagsPath returns the path of the priority flags document.
func (c *Config) PriorityFlagsPath() string {
	return c.coordPath(c.Coordination.PriorityFlagsFile)
}

// VerificationPath returns the path of the verification corpus document.
func (c *Config) VerificationPath() string {
	return c.coordPath(c.Coordination.VerificationFile)
}

// SearchCacheDir returns the directory for the persistent search cache.
func (c *Config) SearchCacheDir() string {
	if c.Corpus.CacheDir != "" {
		return c.Corpus.CacheDir
	}
	return filepath.Join(c.Coordination.Dir, "search-cache")
}

func (c *Config) coordPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Coordination.Dir, name)
}
