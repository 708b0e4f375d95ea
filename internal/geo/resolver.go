// Package geo приблизительно определяет город и страну по IP.
//
// Любая ошибка провайдера превращается в пустой Location: геолокация не должна
// ломать и заметно задерживать редирект.
package geo

import (
	"context"
	"net"
	"strings"

	"github.com/SergeiKhy/qrlink/internal/metrics"
)

// Location пустые поля означают "неизвестно"
type Location struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

func (l Location) IsEmpty() bool {
	return l.City == "" && l.Country == ""
}

// Resolver никогда не возвращает ошибку
type Resolver interface {
	Resolve(ctx context.Context, ip string) Location
}

// ResolverFunc адаптер для функций
type ResolverFunc func(ctx context.Context, ip string) Location

func (f ResolverFunc) Resolve(ctx context.Context, ip string) Location {
	return f(ctx, ip)
}

// Noop провайдер для GEO_PROVIDER=none
type Noop struct{}

func (Noop) Resolve(context.Context, string) Location { return Location{} }

// lookupable отбрасывает адреса, для которых внешний lookup бессмысленен
func lookupable(ip string) (net.IP, bool) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return nil, false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsMulticast() {
		return nil, false
	}
	return parsed, true
}

func observe(provider string, loc Location, err error) {
	switch {
	case err != nil:
		metrics.GeoLookups.WithLabelValues(provider, "error").Inc()
	case loc.IsEmpty():
		metrics.GeoLookups.WithLabelValues(provider, "empty").Inc()
	default:
		metrics.GeoLookups.WithLabelValues(provider, "ok").Inc()
	}
}
