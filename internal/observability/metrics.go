package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total HTTP requests",
		}, []string{"code"},
	)
	Latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_request_duration_seconds",
		Help:    "Request latency seconds",
		Buckets: prometheus.DefBuckets,
	})
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "match_in_flight",
		Help: "In-flight HTTP requests",
	})
	MatchesComputed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_results_total",
		Help: "Match results returned above threshold",
	})
	FetchErrorsSwallowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_fetch_errors_swallowed_total",
			Help: "Candidate/exclusion fetch failures degraded to empty results",
		}, []string{"stage"},
	)
	InvitationsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invitations_sent_total",
		Help: "Invitations created",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal, Latency, InFlight, MatchesComputed, FetchErrorsSwallowed, InvitationsSent)
}

func MetricsHandler() http.Handler { return promhttp.Handler() }

type rec struct {
	http.ResponseWriter
	code int
}

func (r *rec) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func Measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		InFlight.Inc()
		defer InFlight.Dec()

		rr := &rec{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rr, r)

		Latency.Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(strconv.Itoa(rr.code)).Inc()
	})
}
