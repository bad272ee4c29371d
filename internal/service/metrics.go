// metrics.go — доменные Prometheus-метрики dashboard.
package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// driveUpdatesTotal — обновления настроек облачного бэкапа по результату.
	driveUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yd_drive_updates_total",
			Help: "Количество обновлений настроек облачного бэкапа.",
		},
		[]string{"result"},
	)

	// googleUnlinksTotal — отвязки Google Drive.
	googleUnlinksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yd_google_unlinks_total",
		Help: "Количество отвязок Google Drive.",
	})

	// linkCacheHitsTotal / linkCacheMissesTotal — кэш статуса привязки Google Drive.
	linkCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yd_link_cache_hits_total",
		Help: "Попадания в кэш статуса привязки Google Drive.",
	})
	linkCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yd_link_cache_misses_total",
		Help: "Промахи кэша статуса привязки Google Drive.",
	})

	// recordingsListed — размер отданного списка записей.
	recordingsListed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yd_recordings_listed",
		Help:    "Количество записей в одном ответе списка.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})
)
