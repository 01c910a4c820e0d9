package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supplier_imports"

// Metrics собирает метрики HTTP и конвейера импорта. Реализует usecase.ImportMetrics.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	importItemsTotal    *prometheus.CounterVec
	importJobsTotal     *prometheus.CounterVec
	priceEstimatedTotal *prometheus.CounterVec
}

// New регистрирует метрики в собственном реестре вместе со стандартными метриками процесса.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return NewWithRegistry(reg, reg)
}

func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request durations.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"method", "endpoint", "status"},
		),
		importItemsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_items_total",
				Help:      "Imported candidates by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		importJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_jobs_total",
				Help:      "Finished batch import jobs by final status.",
			},
			[]string{"status"},
		),
		priceEstimatedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "import_price_estimated_total",
				Help:      "Products imported with the fallback price because no price was found on the page.",
			},
			[]string{"provider"},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.importItemsTotal,
		m.importJobsTotal,
		m.priceEstimatedTotal,
	)

	return m
}

func (m *Metrics) ObserveItem(provider, outcome string) {
	m.importItemsTotal.WithLabelValues(labelOrUnknown(provider), outcome).Inc()
}

func (m *Metrics) ObserveJob(status string) {
	m.importJobsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObservePriceEstimated(provider string) {
	m.priceEstimatedTotal.WithLabelValues(labelOrUnknown(provider)).Inc()
}

// RecordRequest записывает метрики для HTTP-запроса.
func (m *Metrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// Middleware измеряет запросы. endpoint — шаблон маршрута chi, а не сырой путь,
// чтобы id в URL не раздували число серий.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// Handler возвращает HTTP-обработчик для экспорта метрик Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// classifyStatus классифицирует HTTP-статус код в строку.
func classifyStatus(statusCode int) string {
	if statusCode < 100 || statusCode >= 600 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
