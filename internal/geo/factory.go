package geo

import (
	"io"

	"github.com/SergeiKhy/qrlink/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New собирает цепочку провайдера по конфигу. Closer освобождает ресурсы провайдера.
func New(cfg config.GeoConfig, rdb *redis.Client, logger *zap.Logger) (Resolver, io.Closer, error) {
	var (
		resolver Resolver
		closer   io.Closer = nopCloser{}
	)

	switch cfg.Provider {
	case config.GeoProviderNone:
		return Noop{}, closer, nil
	case config.GeoProviderGeoIP:
		r, err := NewGeoIPResolver(cfg.GeoIPPath, logger)
		if err != nil {
			return nil, nil, err
		}
		resolver, closer = r, r
	default:
		resolver = NewIPAPIResolver(cfg.APIURL, cfg.Timeout, logger)
	}

	if cfg.CacheTTL > 0 {
		resolver = NewCachedResolver(resolver, rdb, cfg.CacheTTL, logger)
	}

	return resolver, closer, nil
}
