package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Page cache paths touched by domain mutations.
const (
	PathPrograms  = "programs"
	PathProkers   = "prokers"
	PathMedia     = "media"
	PathBrandKit  = "brand-kit"
	PathCampaigns = "campaigns"
)

type pageInvalidator interface {
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// PageKey is the cache key of a public page path.
func PageKey(path string) string {
	return "page:" + strings.Trim(path, "/")
}

// RevalidationService drops cached public pages after content changes.
// A nil *RevalidationService is a valid no-op.
type RevalidationService struct {
	cache   pageInvalidator
	metrics *MetricsService
	logger  *zap.Logger
}

// NewRevalidationService constructs the service.
func NewRevalidationService(cache pageInvalidator, metrics *MetricsService, logger *zap.Logger) *RevalidationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevalidationService{cache: cache, metrics: metrics, logger: logger}
}

// Revalidate invalidates the page key of each path and its "<key>:" children.
// Sibling paths sharing a prefix stay cached. Failures are logged only.
func (s *RevalidationService) Revalidate(ctx context.Context, paths ...string) {
	if s == nil || s.cache == nil {
		return
	}
	for _, p := range paths {
		if strings.Trim(p, "/") == "" {
			continue
		}
		key := globEscape(PageKey(p))
		var (
			total  int
			failed bool
		)
		for _, pattern := range []string{key, key + ":*"} {
			n, err := s.cache.Invalidate(ctx, pattern)
			if err != nil {
				s.logger.Warn("page revalidation failed", zap.String("path", p), zap.String("pattern", pattern), zap.Error(err))
				failed = true
				continue
			}
			total += n
		}
		if failed {
			continue
		}
		s.metrics.RecordRevalidation(p)
		s.logger.Debug("page revalidated", zap.String("path", p), zap.Int("keys", total))
	}
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// globEscape quotes the redis SCAN MATCH metacharacters in s.
func globEscape(s string) string {
	return globEscaper.Replace(s)
}
