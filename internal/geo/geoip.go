package geo

import (
	"context"
	"fmt"

	geoip2 "github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

// GeoIPResolver локальная MaxMind City база, без сетевых вызовов
type GeoIPResolver struct {
	db     *geoip2.Reader
	logger *zap.Logger
}

// NewGeoIPResolver возвращает ошибку, если файл базы не открывается или повреждён
func NewGeoIPResolver(dbPath string, logger *zap.Logger) (*GeoIPResolver, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeoIPResolver{db: db, logger: logger}, nil
}

func (g *GeoIPResolver) Close() error {
	return g.db.Close()
}

func (g *GeoIPResolver) Resolve(_ context.Context, ip string) Location {
	parsed, ok := lookupable(ip)
	if !ok {
		return Location{}
	}

	record, err := g.db.City(parsed)
	if err != nil {
		observe("geoip", Location{}, err)
		g.logger.Debug("GeoIP lookup failed", zap.String("ip", ip), zap.Error(err))
		return Location{}
	}

	loc := Location{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	observe("geoip", loc, nil)
	return loc
}
