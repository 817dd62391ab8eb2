package corpus

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/certainly-project/gapfill/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Match is one corpus file containing the searched pattern.
type Match struct {
	File  string `json:"file"`
	Count int    `json:"count"`
	Ext   string `json:"type"`
}

// Searcher is the corpus search capability. Search returns every corpus
// file containing pattern, with a per-file occurrence count. fileType,
// when non-empty, restricts the search to files with that extension.
//
// Search never fails fatally: a missing root, unreadable file or expired
// deadline yields whatever was found so far and a nil error.
type Searcher interface {
	Search(ctx context.Context, pattern, fileType string) ([]Match, error)
}

// DirSearcher walks a fixed list of corpus root directories and matches
// by case-sensitive substring. A '.' in the pattern matches any single
// byte, so callers may sanitize hostile patterns (URLs, shell-unsafe
// strings) by replacing non-alphanumerics with dots.
type DirSearcher struct {
	roots        []string
	timeout      time.Duration
	maxFileBytes int64
	limiter      *rate.Limiter
	cache        cache.Cache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// Option configures a DirSearcher.
type Option func(*DirSearcher)

// WithTimeout bounds each Search call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *DirSearcher) { s.timeout = d }
}

// WithMaxFileBytes skips corpus files larger than n bytes.
func WithMaxFileBytes(n int64) Option {
	return func(s *DirSearcher) { s.maxFileBytes = n }
}

// WithRateLimit bounds how many searches start per second, so a fast
// re-poll loop cannot saturate disk I/O.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *DirSearcher) {
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCache caches search results keyed by pattern and file type.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *DirSearcher) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// NewDirSearcher creates a searcher over the given corpus roots.
func NewDirSearcher(roots []string, logger *zap.Logger, opts ...Option) *DirSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DirSearcher{
		roots:        roots,
		maxFileBytes: 10 * 1024 * 1024,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search walks every configured root and returns matching files with
// occurrence counts. Roots that do not exist are skipped silently.
func (s *DirSearcher) Search(ctx context.Context, pattern, fileType string) ([]Match, error) {
	results := []Match{}
	if pattern == "" {
		return results, nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return results, nil
		}
	}

	key := cache.SearchKey(pattern, fileType)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			var cached []Match
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for _, root := range s.roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		s.searchRoot(ctx, root, pattern, fileType, &results)
	}

	if s.cache != nil && ctx.Err() == nil {
		if data, err := json.Marshal(results); err == nil {
			_ = s.cache.Set(key, data, s.cacheTTL)
		}
	}

	return results, nil
}

// searchRoot appends matches found under one root. Walk errors and
// unreadable files are skipped; a dead context stops the walk early and
// the partial result stands.
func (s *DirSearcher) searchRoot(ctx context.Context, root, pattern, fileType string, results *[]Match) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if fileType != "" && ext != fileType {
			return nil
		}

		if info, err := d.Info(); err != nil || (s.maxFileBytes > 0 && info.Size() > s.maxFileBytes) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}

		// Occurrence count doubles as the match check: a file that
		// counts to zero is excluded outright.
		count := countMatches(data, pattern)
		if count > 0 {
			*results = append(*results, Match{File: path, Count: count, Ext: ext})
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("corpus walk failed", zap.String("root", root), zap.Error(err))
	}
}

// countMatches counts non-overlapping occurrences of pattern in data.
// A '.' in the pattern matches any single byte; all other bytes match
// literally and case-sensitively.
func countMatches(data []byte, pattern string) int {
	if pattern == "" || len(pattern) > len(data) {
		return 0
	}
	if !strings.Contains(pattern, ".") {
		return strings.Count(string(data), pattern)
	}

	count := 0
	for i := 0; i+len(pattern) <= len(data); {
		if matchAt(data, i, pattern) {
			count++
			i += len(pattern)
		} else {
			i++
		}
	}
	return count
}

func matchAt(data []byte, off int, pattern string) bool {
	for j := 0; j < len(pattern); j++ {
		if pattern[j] == '.' {
			continue
		}
		if data[off+j] != pattern[j] {
			return false
		}
	}
	return true
}

// SanitizePattern replaces every non-alphanumeric byte with '.', the
// single-byte wildcard understood by the searcher. Handlers use it for
// patterns that embed URL punctuation.
func SanitizePattern(pattern string) string {
	out := []byte(pattern)
	for i, c := range out {
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !alnum {
			out[i] = '.'
		}
	}
	return string(out)
}
