package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Total de envios por resultado (stored, discarded, throttled, validation, configuration, storage, unexpected)",
		},
		[]string{"outcome"},
	)

	StoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_store_duration_seconds",
			Help:    "Duração da gravação do objeto no storage",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoredBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_stored_bytes_total",
			Help: "Total de bytes gravados no storage",
		},
	)
)

// Resultados usados como label de SubmissionsTotal além das categorias de erro.
const (
	OutcomeStored    = "stored"
	OutcomeDiscarded = "discarded"
)
