package deployer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	Registry              *prometheus.Registry
	TxSubmittedCounter    *prometheus.CounterVec
	TxFailureCounter      *prometheus.CounterVec
	ContractsInstantiated *prometheus.CounterVec
	ProgramsCreated       *prometheus.CounterVec
}

func (m *PrometheusMetrics) IncTxSubmitted(chain, kind string) {
	m.TxSubmittedCounter.WithLabelValues(chain, kind).Inc()
}

func (m *PrometheusMetrics) IncTxFailure(chain, kind, cause string) {
	m.TxFailureCounter.WithLabelValues(chain, kind, cause).Inc()
}

func (m *PrometheusMetrics) IncContractsInstantiated(chain, role string) {
	m.ContractsInstantiated.WithLabelValues(chain, role).Inc()
}

func (m *PrometheusMetrics) IncProgramsCreated(chain, result string) {
	m.ProgramsCreated.WithLabelValues(chain, result).Inc()
}

func NewPrometheusMetrics() *PrometheusMetrics {
	txLabels := []string{"chain", "kind"}
	txFailureLabels := []string{"chain", "kind", "cause"}
	contractLabels := []string{"chain", "role"}
	programLabels := []string{"chain", "result"}
	registry := prometheus.NewRegistry()
	registerer := promauto.With(registry)
	return &PrometheusMetrics{
		Registry: registry,
		TxSubmittedCounter: registerer.NewCounterVec(prometheus.CounterOpts{
			Name: "lpdeployer_submitted_txs",
			Help: "The total number of transactions submitted",
		}, txLabels),
		TxFailureCounter: registerer.NewCounterVec(prometheus.CounterOpts{
			Name: "lpdeployer_tx_failures",
			Help: "The total number of transactions that failed",
		}, txFailureLabels),
		ContractsInstantiated: registerer.NewCounterVec(prometheus.CounterOpts{
			Name: "lpdeployer_instantiated_contracts",
			Help: "The total number of contracts instantiated, by program role",
		}, contractLabels),
		ProgramsCreated: registerer.NewCounterVec(prometheus.CounterOpts{
			Name: "lpdeployer_program_runs",
			Help: "The total number of create-program runs, by result",
		}, programLabels),
	}
}
