package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userdirectory"

// NewCounter is shared by every component; the "result" label names the event
// (user_created_total, attachments_stored_total, user_cache_hits_total, ...).
func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "general_counters",
			Help:      "Counts user directory operations by result.",
		},
		[]string{"result"})
}
