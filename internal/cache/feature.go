package cache

import (
	"context"
)

// FeatureInvalidator drops a user's cached feature flags after their plan
// changes. Invalidation is best-effort: callers log failures and move on,
// a stale entry expires on its own.
type FeatureInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type featureInvalidator struct {
	cache Cache
}

// NewFeatureInvalidator creates a FeatureInvalidator over the given cache
func NewFeatureInvalidator(cache Cache) FeatureInvalidator {
	return &featureInvalidator{cache: cache}
}

func (f *featureInvalidator) Invalidate(ctx context.Context, userID string) error {
	return f.cache.Delete(ctx, GenerateKey(PrefixFeature, userID))
}
