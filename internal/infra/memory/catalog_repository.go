package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"weapon-quiz-service/internal/domain"
)

// ItemLoader fetches normalized items from a record source (e.g. catalog.Loader).
type ItemLoader interface {
	Load(ctx context.Context, limit int) ([]domain.Item, error)
}

// CatalogRepository caches loaded catalogs with TTL to avoid repeated API hits.
type CatalogRepository struct {
	loader ItemLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[int]cachedCatalog
}

type cachedCatalog struct {
	items     []domain.Item
	expiresAt time.Time
}

func NewCatalogRepository(loader ItemLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedCatalog),
	}
}

// Items returns a copy of the cached catalog for limit, loading it on miss.
func (r *CatalogRepository) Items(ctx context.Context, limit int) ([]domain.Item, error) {
	if items, ok := r.lookup(limit); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(strconv.Itoa(limit), func() (interface{}, error) {
		if items, ok := r.lookup(limit); ok {
			return items, nil
		}

		items, err := r.loader.Load(ctx, limit)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		if ttl > 0 {
			r.mu.Lock()
			r.cache[limit] = cachedCatalog{
				items:     items,
				expiresAt: r.clock().Add(ttl),
			}
			r.mu.Unlock()
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Item(nil), result.([]domain.Item)...), nil
}

// Invalidate drops every cached catalog.
func (r *CatalogRepository) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[int]cachedCatalog)
	r.mu.Unlock()
}

func (r *CatalogRepository) lookup(limit int) ([]domain.Item, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[limit]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return append([]domain.Item(nil), entry.items...), true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLoader is a simple loader backed by a fixed slice (useful for tests/demos).
type StaticLoader struct {
	items []domain.Item
}

func NewStaticLoader(items []domain.Item) *StaticLoader {
	return &StaticLoader{items: items}
}

func (l *StaticLoader) Load(_ context.Context, limit int) ([]domain.Item, error) {
	out := l.items
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]domain.Item(nil), out...), nil
}
