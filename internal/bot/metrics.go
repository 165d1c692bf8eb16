package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdateProcessingTime prometheus.Histogram
	MessagesProcessed    prometheus.Counter
	InlineQueries        prometheus.Counter
	StatsQueries         *prometheus.CounterVec
	FetchDuration        prometheus.Histogram
	ErrorsTotal          prometheus.Counter
}

// NewMetrics создает и регистрирует метрики. Вызывается один раз из main.
func NewMetrics() *Metrics {
	return &Metrics{
		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcstatbot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcstatbot_messages_processed_total",
			Help: "Total number of messages processed",
		}),

		InlineQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcstatbot_inline_queries_total",
			Help: "Total number of inline queries processed",
		}),

		StatsQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mcstatbot_stats_queries_total",
			Help: "Stats queries by outcome",
		}, []string{"outcome"}),

		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcstatbot_fetch_duration_seconds",
			Help:    "Time spent fetching server info from the status API",
			Buckets: prometheus.DefBuckets,
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mcstatbot_errors_total",
			Help: "Total number of unexpected handler errors",
		}),
	}
}
