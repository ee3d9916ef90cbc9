// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_total",
			Help: "Total number of chat requests by intent",
		},
		[]string{"intent"},
	)

	ChatRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_requests_failed_total",
			Help: "Total number of chat requests answered with a degraded response",
		},
		[]string{"intent", "error_code"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chatbot_request_duration_seconds",
			Help: "Duration of chat request processing in seconds",
		},
		[]string{"intent"},
	)

	ResponseCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	ResponseCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_response_cache_misses_total",
			Help: "Total number of cacheable requests that missed the response cache",
		},
	)

	ClassifierFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_classifier_fallbacks_total",
			Help: "Total number of classifications that fell back to the general intent",
		},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_tool_calls_total",
			Help: "Total number of backend tool calls by tool and status",
		},
		[]string{"tool", "status"},
	)

	TokensConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_llm_tokens_total",
			Help: "Total number of LLM tokens consumed by model and kind",
		},
		[]string{"model", "kind"},
	)
)
