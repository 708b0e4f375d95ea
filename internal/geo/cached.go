package geo

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	localCacheSize = 10000
	localCacheTTL  = time.Minute
)

var errEmptyLocation = errors.New("empty location")

// CachedResolver кэширует непустые ответы провайдера по IP.
// Одновременные запросы по одному IP схлопываются в один lookup.
type CachedResolver struct {
	next   Resolver
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedResolver rdb может быть nil, тогда работает только локальный TinyLFU
func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedResolver {
	opts := &cache.Options{
		LocalCache: cache.NewTinyLFU(localCacheSize, localCacheTTL),
	}
	if rdb != nil {
		opts.Redis = rdb
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedResolver{
		next:   next,
		cache:  cache.New(opts),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, ip string) Location {
	if _, ok := lookupable(ip); !ok {
		return Location{}
	}

	var loc Location
	err := c.cache.Once(&cache.Item{
		Ctx:   ctx,
		Key:   "geo:" + ip,
		Value: &loc,
		TTL:   c.ttl,
		Do: func(item *cache.Item) (interface{}, error) {
			resolved := c.next.Resolve(item.Context(), ip)
			if resolved.IsEmpty() {
				// пустой результат не кэшируем, следующий скан попробует снова
				return nil, errEmptyLocation
			}
			return resolved, nil
		},
	})
	if err != nil {
		if !errors.Is(err, errEmptyLocation) {
			c.logger.Debug("Geo cache failed", zap.String("ip", ip), zap.Error(err))
		}
		return Location{}
	}

	return loc
}
