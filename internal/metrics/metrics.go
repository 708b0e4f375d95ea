// Package metrics prometheus-метрики редиректа и аналитики
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions разрешения кодов: type - тип ссылки, outcome - not_found, ok, invalid_type, error
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_resolutions_total",
		Help: "Количество разрешений коротких кодов",
	}, []string{"type", "outcome"})

	// ResolveDuration время обработки разрешения без записи скана
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qr_resolve_duration_seconds",
		Help:    "Время разрешения кода до готового ответа",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	})

	// ScanWrites результат записи скана: recorded, failed, dropped
	ScanWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_scan_writes_total",
		Help: "Результаты записи событий сканирования",
	}, []string{"result"})

	ScanQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qr_scan_queue_depth",
		Help: "Количество сканов, ожидающих записи",
	})

	// GeoLookups результат геолокации: ok, empty, error
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_geo_lookups_total",
		Help: "Результаты геолокации по IP",
	}, []string{"provider", "result"})
)
