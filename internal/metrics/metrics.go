package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the pipeline services
	Registry = prometheus.NewRegistry()
	// MessagesConsumed counts consumed pipeline messages by topic and outcome
	MessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_messages_consumed_total", Help: "Messages consumed by topic and outcome."},
		[]string{"topic", "outcome"},
	)
	// MessagesPublished counts published messages by topic and place type
	MessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pipeline_messages_published_total", Help: "Messages published by topic and place type."},
		[]string{"topic", "place_type"},
	)
	// ProviderCalls counts external provider calls by provider and status
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "provider_calls_total", Help: "External provider calls by provider and status."},
		[]string{"provider", "status"},
	)
	// ProviderLatency tracks provider call latencies in milliseconds
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "provider_call_latency_ms", Help: "Provider call latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"provider"},
	)
	// CacheLookups counts persistent cache lookups by collection and result
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cache_lookups_total", Help: "Persistent cache lookups by collection and result."},
		[]string{"collection", "result"},
	)
	// TranslationFallbacks counts translations that degraded to pass-through text
	TranslationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "translation_fallbacks_total", Help: "Translations that returned the original text."},
	)
)

// RegisterDefault registers the pipeline collectors on Registry, once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(MessagesConsumed)
		Registry.MustRegister(MessagesPublished)
		Registry.MustRegister(ProviderCalls)
		Registry.MustRegister(ProviderLatency)
		Registry.MustRegister(CacheLookups)
		Registry.MustRegister(TranslationFallbacks)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
