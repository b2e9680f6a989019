package products

import (
	"context"
	"log/slog"
)

// CachedStore wraps a PostgresStore with a Redis cache-aside layer. Cache
// failures are logged and treated as misses; the database stays authoritative.
type CachedStore struct {
	store  *PostgresStore
	cache  *ProductCache
	logger *slog.Logger
}

func NewCachedStore(store *PostgresStore, cache *ProductCache, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (s *CachedStore) Get(ctx context.Context, id int64) (*Product, error) {
	// 1. Check cache first
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn("cache error, falling back to database", slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	// 2. Cache miss: query the database
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Populate cache, best-effort
	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.Warn("failed to populate cache",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
	}

	return p, nil
}

// List bypasses the cache; full-catalog reads go straight to the database
func (s *CachedStore) List(ctx context.Context) ([]*Product, error) {
	return s.store.List(ctx)
}

func (s *CachedStore) Create(ctx context.Context, name, description string, price int64) (*Product, error) {
	return s.store.Create(ctx, name, description, price)
}

func (s *CachedStore) Update(ctx context.Context, id int64, name, description string, price int64) (*Product, error) {
	p, err := s.store.Update(ctx, id, name, description, price)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cache",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
	}

	return p, nil
}

func (s *CachedStore) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cache",
			slog.Int64("product_id", id),
			slog.Any("error", err),
		)
	}

	return nil
}
