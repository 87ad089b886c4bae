package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(postingsSavedTotal, postingsNotifiedTotal) }

var postingsSavedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "job_postings_saved_total",
		Help: "Job posting rows handed to the store (duplicates included).",
	},
)

var postingsNotifiedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "job_postings_notified_total",
		Help: "Postings surfaced by the notifier, by delivery kind.",
	},
	[]string{"kind"}, // 'report', 'fallback'
)

func AddPostingsSaved(n int) {
	postingsSavedTotal.Add(float64(n))
}

func IncPostingNotified(kind string) {
	postingsNotifiedTotal.WithLabelValues(norm(kind)).Inc()
}
