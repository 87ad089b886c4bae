package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(aiCallsTotal, aiCallLatencyMs) }

var aiCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_calls_total",
		Help: "AI completion calls per provider/model and outcome.",
	},
	[]string{"provider", "model", "success"},
)

var aiCallLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_call_latency_ms",
		Help:    "AI call latency distribution in milliseconds.",
		Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 30000},
	},
	[]string{"provider", "model"},
)

func ObserveAICall(provider, model string, latencyMs int64, success bool) {
	aiCallsTotal.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).Inc()
	aiCallLatencyMs.WithLabelValues(norm(provider), norm(model)).Observe(float64(latencyMs))
}
