// Package metrics exposes the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	cacheLookups       *prometheus.CounterVec
	recipeWrites       *prometheus.CounterVec
	imageUploads       *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_generations_total",
			Help: "Recipe generation calls by outcome (success or error category)",
		}, []string{"outcome"}),
		generationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipe_generation_duration_seconds",
			Help:    "Time spent waiting on the AI provider",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_generation_cache_lookups_total",
			Help: "Generation cache lookups by result",
		}, []string{"result"}),
		recipeWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_writes_total",
			Help: "Recipe create, update and delete operations",
		}, []string{"operation"}),
		imageUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_image_uploads_total",
			Help: "Recipe image uploads by result",
		}, []string{"result"}),
	}
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveGeneration records one provider round trip.
func (m *Metrics) ObserveGeneration(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.generationDuration.Observe(d.Seconds())
	}
}

// CacheLookup records "hit", "miss" or "error".
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecipeWrite records "create", "update" or "delete".
func (m *Metrics) RecipeWrite(operation string) {
	if m == nil {
		return
	}
	m.recipeWrites.WithLabelValues(operation).Inc()
}

// ImageUpload records "stored", "rejected" or "failed".
func (m *Metrics) ImageUpload(result string) {
	if m == nil {
		return
	}
	m.imageUploads.WithLabelValues(result).Inc()
}
