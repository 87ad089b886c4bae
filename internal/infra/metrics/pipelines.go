package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pipelineRunsTotal, pipelineStageFailures, pipelineDurationMs) }

var pipelineRunsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Pipeline runs by pipeline name and outcome.",
	},
	[]string{"pipeline", "status"}, // 'ok', 'failed'
)

var pipelineStageFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_stage_failures_total",
		Help: "Stage failures by pipeline and stage name.",
	},
	[]string{"pipeline", "stage"},
)

var pipelineDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_duration_ms",
		Help:    "Wall-clock duration of whole pipeline runs in milliseconds.",
		Buckets: []float64{100, 500, 1000, 5000, 15000, 30000, 60000, 180000},
	},
	[]string{"pipeline"},
)

func IncPipelineRun(pipeline, status string) {
	pipelineRunsTotal.WithLabelValues(norm(pipeline), norm(status)).Inc()
}

func IncStageFailure(pipeline, stage string) {
	pipelineStageFailures.WithLabelValues(norm(pipeline), norm(stage)).Inc()
}

func ObservePipelineDuration(pipeline string, ms int64) {
	pipelineDurationMs.WithLabelValues(norm(pipeline)).Observe(float64(ms))
}
