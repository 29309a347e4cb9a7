package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IndexBuildDuration records how long each locale index build took.
	IndexBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forgeline_index_build_duration_seconds",
		Help:    "Content index build duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"locale"})

	// IndexItemsTotal is the gauge of items in the active index per locale.
	IndexItemsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "forgeline_index_items",
		Help: "Number of content items in the active index",
	}, []string{"locale"})

	// IndexParseErrorsTotal counts content items skipped as malformed.
	IndexParseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_index_parse_errors_total",
		Help: "Total content items skipped due to parse errors",
	}, []string{"locale"})

	// IndexDuplicatesTotal counts items rejected for a duplicate slug.
	IndexDuplicatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_index_duplicate_slugs_total",
		Help: "Total content items rejected due to duplicate slugs",
	}, []string{"locale"})

	// SubmissionsTotal counts form submissions by kind and outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_submissions_total",
		Help: "Total form submissions by kind and outcome",
	}, []string{"kind", "outcome"})

	// FeedRendersTotal counts RSS feed renders per locale.
	FeedRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_feed_renders_total",
		Help: "Total RSS feed renders",
	}, []string{"locale"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MailDeliveriesTotal counts notification mail deliveries by outcome.
	MailDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forgeline_mail_deliveries_total",
		Help: "Total notification mail deliveries by outcome",
	}, []string{"outcome"})
)
