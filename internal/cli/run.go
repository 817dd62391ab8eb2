package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certainly-project/gapfill/internal/model"
	"github.com/certainly-project/gapfill/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	coordDir      string
	corpusRoots   []string
	pollInterval  time.Duration
	watchFeed     bool
	searchTimeout time.Duration
	noSearchCache bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reactive processor loop",
	Long: `Run starts the continuous reactive processor:
- Poll the live evidence feed for items not yet processed
- Classify each item and dispatch its trigger handler
- Corroborate against the corpus and assign confidence tiers
- Escalate corroborated items to priority-flag queues
- Flush the reaction log, tier upgrades and flags after every batch

The loop stops on SIGINT/SIGTERM after one final state flush.

Example:
  gapfill run --coord-dir ./coordination --corpus-root ./noteworthy-raw
  gapfill run --interval 10s --watch
  gapfill run --corpus-root ./dump-a --corpus-root ./dump-b`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&coordDir, "coord-dir", "./coordination", "coordination directory for feed and state documents")
	runCmd.Flags().StringArrayVar(&corpusRoots, "corpus-root", nil, "corpus root directory (repeatable)")
	runCmd.Flags().DurationVar(&pollInterval, "interval", 5*time.Second, "feed polling interval")
	runCmd.Flags().BoolVar(&watchFeed, "watch", false, "wake on feed file changes in addition to the timer")
	runCmd.Flags().DurationVar(&searchTimeout, "search-timeout", 30*time.Second, "timeout per corpus search (timeout means no results, never an error)")
	runCmd.Flags().BoolVar(&noSearchCache, "no-cache", false, "disable the corpus search result cache")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := pipeline.New(cfg, logger)
	if err := proc.Run(ctx); err != nil {
		return fmt.Errorf("processor: %w", err)
	}
	return nil
}

// buildConfig assembles the runtime configuration: defaults, then the
// config file and environment, then flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if viper.ConfigFileUsed() != "" {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	cfg.Coordination.Dir = coordDir
	if len(corpusRoots) > 0 {
		cfg.Corpus.Roots = corpusRoots
	}
	cfg.Poll.Interval = pollInterval
	cfg.Poll.Watch = watchFeed
	cfg.Corpus.SearchTimeout = searchTimeout
	if noSearchCache {
		cfg.Corpus.CacheEnabled = false
	}
	cfg.Output.Verbose = verbose

	return cfg, nil
}

// newLogger builds the process logger: production JSON output, debug
// level under --verbose.
func newLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
