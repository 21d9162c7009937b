package labeling

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/objones25/vectrend/internal/labeling/cache"
)

// CachedLabeler serves labels for previously seen groups from a cache.
type CachedLabeler struct {
	next   Labeler
	cache  cache.Cache
	keys   *cache.KeyGenerator
	model  string
	logger zerolog.Logger
}

// NewCachedLabeler wraps next. model is folded into cache keys so switching
// models does not reuse old labels.
func NewCachedLabeler(next Labeler, c cache.Cache, model string, logger zerolog.Logger) *CachedLabeler {
	return &CachedLabeler{
		next:   next,
		cache:  c,
		keys:   cache.NewKeyGenerator(""),
		model:  model,
		logger: logger,
	}
}

// Label returns cached labels when present; otherwise it asks the wrapped
// labeler and stores a complete answer. Cache failures are logged, not returned.
func (l *CachedLabeler) Label(ctx context.Context, groups [][]string) ([]string, error) {
	key := l.keys.GenerateKey(groups, l.model)

	cached, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("Label cache read failed")
	} else if cached != nil {
		l.logger.Debug().Str("key", key).Msg("Using cached labels")
		return cached, nil
	}

	labels, err := l.next.Label(ctx, groups)
	if err != nil {
		return nil, err
	}

	if len(labels) == len(groups) {
		if err := l.cache.Set(ctx, key, labels); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("Label cache write failed")
		}
	}
	return labels, nil
}
