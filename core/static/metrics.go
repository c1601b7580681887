package static

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the plugin's Prometheus collectors. One instance can be
// shared by several plugins; series are split by the "prefix" label.
// A nil *Metrics records nothing.
type Metrics struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	Evictions   *prometheus.CounterVec
	NotModified *prometheus.CounterVec
	NotFound    *prometheus.CounterVec
	Routes      *prometheus.GaugeVec
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetserve_cache_hits_total",
			Help: "Dynamic-mode response cache hits",
		}, []string{"prefix"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetserve_cache_misses_total",
			Help: "Dynamic-mode response cache misses",
		}, []string{"prefix"}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetserve_cache_evictions_total",
			Help: "Responses dropped from the cache by capacity or expiry",
		}, []string{"prefix"}),
		NotModified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetserve_304_responses_total",
			Help: "304 Not Modified responses",
		}, []string{"prefix"}),
		NotFound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetserve_not_found_total",
			Help: "Requests resolved to not found, by reason",
		}, []string{"prefix", "reason"}), // traversal, ignored, missing, io
		Routes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "assetserve_routes",
			Help: "Routes registered by a plugin instance",
		}, []string{"prefix", "mode"}),
	}
}

func prefixLabel(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}

func (m *Metrics) cacheHit(prefix string) {
	if m != nil {
		m.CacheHits.WithLabelValues(prefixLabel(prefix)).Inc()
	}
}

func (m *Metrics) cacheMiss(prefix string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(prefixLabel(prefix)).Inc()
	}
}

func (m *Metrics) eviction(prefix string) {
	if m != nil {
		m.Evictions.WithLabelValues(prefixLabel(prefix)).Inc()
	}
}

func (m *Metrics) notModified(prefix string) {
	if m != nil {
		m.NotModified.WithLabelValues(prefixLabel(prefix)).Inc()
	}
}

func (m *Metrics) notFound(prefix, reason string) {
	if m != nil {
		m.NotFound.WithLabelValues(prefixLabel(prefix), reason).Inc()
	}
}

func (m *Metrics) routes(prefix string, mode Mode, n int) {
	if m != nil {
		m.Routes.WithLabelValues(prefixLabel(prefix), string(mode)).Set(float64(n))
	}
}
