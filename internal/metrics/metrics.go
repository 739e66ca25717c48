package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ecomarket/marketplace/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "marketplace",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Search metrics

	SearchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "search_requests_total",
		Help:      "Search requests, by resolved tier.",
	}, []string{"tier"})

	KeywordExpansionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "marketplace",
		Name:      "keyword_expansion_duration_seconds",
		Help:      "Latency of AI keyword expansion calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
	})

	// Catalog metrics

	ImageUploadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "marketplace",
		Name:      "image_upload_duration_seconds",
		Help:      "Latency of product image uploads to the object store.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	ProductsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "marketplace",
		Name:      "products_created_total",
		Help:      "Total products created.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		SearchRequestsTotal,
		KeywordExpansionDuration,
		ImageUploadDuration,
		ProductsCreatedTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// separate port from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}

// UploadTimer measures one image upload.
type UploadTimer struct {
	start time.Time
}

func NewUploadTimer() *UploadTimer {
	return &UploadTimer{start: time.Now()}
}

func (t *UploadTimer) Observe() {
	ImageUploadDuration.Observe(time.Since(t.start).Seconds())
}
