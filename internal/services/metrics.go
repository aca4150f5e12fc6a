package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"task-lifecycle.com/task-lifecycle/internal/constants"
)

const metricsNamespace = "task_lifecycle"

// Metrics counts pipeline outcomes. A nil registerer yields unregistered
// collectors, which keeps tests independent of the global registry.
type Metrics struct {
	Adoptions   *prometheus.CounterVec
	Assignments *prometheus.CounterVec
	Executions  prometheus.Counter
	Transitions *prometheus.CounterVec
	Messages    *prometheus.CounterVec
	WriteRaces  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Adoptions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "adoptions_total",
			Help:      "Template adoptions by result (created, existing).",
		}, []string{"result"}),
		Assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "assignments_total",
			Help:      "Task assignments by result (created, existing).",
		}, []string{"result"}),
		Executions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "executions_created_total",
			Help:      "Executions opened.",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "execution_transitions_total",
			Help:      "Execution status transitions.",
		}, []string{"from", "to"}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_appended_total",
			Help:      "Messages appended to the ledger by role.",
		}, []string{"role"}),
		WriteRaces: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "write_races_total",
			Help:      "Concurrent writes resolved by re-reading or retrying.",
		}, []string{"entity"}),
	}
}

func (m *Metrics) transition(from, to constants.ExecutionStatus) {
	m.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RegisterCacheSize exports the entry count of an in-process template cache.
func RegisterCacheSize(reg prometheus.Registerer, size func() int) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "template_cache_entries",
		Help:      "Entries held by the in-process template cache, counting id and key separately.",
	}, func() float64 {
		return float64(size())
	})
}
