package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the gateway.
var Metrics = struct {
	VotesTotal        *prometheus.CounterVec
	CommentsTotal     prometheus.Counter
	OrphanedReplies   prometheus.Counter
	RequestDuration   *prometheus.HistogramVec
	DBPoolActive      prometheus.GaugeFunc
	DBPoolIdle        prometheus.GaugeFunc
	RequestsInFlight  prometheus.Gauge
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	RealtimeEvents    *prometheus.CounterVec
	RealtimeReconnect prometheus.Counter
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.VotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotten_trenches_votes_total",
			Help: "Total votes submitted, by direction.",
		},
		[]string{"vote_type"},
	)

	Metrics.CommentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotten_trenches_comments_total",
			Help: "Total comments posted.",
		},
	)

	Metrics.OrphanedReplies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotten_trenches_orphaned_replies_total",
			Help: "Replies dropped during thread assembly because their parent was missing.",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rotten_trenches_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rotten_trenches_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotten_trenches_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotten_trenches_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	Metrics.RealtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotten_trenches_realtime_events_total",
			Help: "Realtime change events processed, by table.",
		},
		[]string{"table"},
	)

	Metrics.RealtimeReconnect = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rotten_trenches_realtime_reconnects_total",
			Help: "Realtime websocket reconnect attempts.",
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "rotten_trenches_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "rotten_trenches_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.VotesTotal,
		Metrics.CommentsTotal,
		Metrics.OrphanedReplies,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.RealtimeEvents,
		Metrics.RealtimeReconnect,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 10 && path[:10] == "/api/kols/":
		rest := path[10:]
		switch {
		case hasSuffixSegment(rest, "votes"):
			return "/api/kols/:kolId/votes"
		case hasSuffixSegment(rest, "cooldown"):
			return "/api/kols/:kolId/votes/cooldown"
		case hasSuffixSegment(rest, "comments"):
			return "/api/kols/:kolId/comments"
		case hasSuffixSegment(rest, "vote-history"):
			return "/api/kols/:kolId/vote-history"
		case hasSuffixSegment(rest, "refresh"):
			return "/api/kols/:kolId/pnl/refresh"
		default:
			return "/api/kols/:kolId"
		}
	case len(path) > 14 && path[:14] == "/api/bounties/":
		if hasSuffixSegment(path, "submissions") {
			return "/api/bounties/:bountyId/submissions"
		}
		return "/api/bounties/:bountyId"
	default:
		return path
	}
}

func hasSuffixSegment(path, segment string) bool {
	n := len(path) - len(segment)
	return n > 0 && path[n:] == segment && path[n-1] == '/'
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.Context())
		return nil
	}
}
