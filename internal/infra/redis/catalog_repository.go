package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"weapon-quiz-service/internal/domain"
)

// ItemLoader fetches normalized items from a record source (e.g. catalog.Loader).
type ItemLoader interface {
	Load(ctx context.Context, limit int) ([]domain.Item, error)
}

// CatalogRepository caches normalized catalogs in Redis and falls back to a loader on cache miss.
// Items are stored as a JSON array: SET catalog:weapons:{variant}:{limit} [...] EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader ItemLoader
	ttl    time.Duration
	log    *zap.Logger
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader ItemLoader, ttl time.Duration, log *zap.Logger) *CatalogRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Items(ctx context.Context, limit int) ([]domain.Item, error) {
	key := r.key(limit)
	if items, ok := r.cached(ctx, key); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if items, ok := r.cached(ctx, key); ok {
			return items, nil
		}

		items, err := r.loader.Load(ctx, limit)
		if err != nil {
			return nil, err
		}

		if ttl := r.ttlWithJitter(); ttl > 0 {
			payload, err := json.Marshal(items)
			if err == nil {
				err = r.client.Set(ctx, key, payload, ttl).Err()
			}
			if err != nil {
				// the catalog is still usable without the cache
				r.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Item(nil), result.([]domain.Item)...), nil
}

// Invalidate removes the cached catalog for limit.
func (r *CatalogRepository) Invalidate(ctx context.Context, limit int) error {
	return r.client.Del(ctx, r.key(limit)).Err()
}

func (r *CatalogRepository) cached(ctx context.Context, key string) ([]domain.Item, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn("discarding corrupt catalog cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

// variantLoader is implemented by loaders whose output depends on settings
// (mode, minimum grade); the variant becomes part of the cache key.
type variantLoader interface {
	Variant() string
}

func (r *CatalogRepository) key(limit int) string {
	if v, ok := r.loader.(variantLoader); ok && v.Variant() != "" {
		return "catalog:weapons:" + v.Variant() + ":" + strconv.Itoa(limit)
	}
	return "catalog:weapons:" + strconv.Itoa(limit)
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
