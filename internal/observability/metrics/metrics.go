package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest exposes counters for the ingestion pipeline.
type Ingest struct {
	outcomes *prometheus.CounterVec
	requeues prometheus.Counter
}

// NewIngest registers ingestion instruments on the given registerer.
func NewIngest(reg prometheus.Registerer) *Ingest {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Ingest{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nfe_ingest_outcomes_total",
			Help: "Terminal outcomes of file ingestion attempts.",
		}, []string{"outcome"}),
		requeues: factory.NewCounter(prometheus.CounterOpts{
			Name: "nfe_ingest_requeues_total",
			Help: "Files resubmitted to the retry channel.",
		}),
	}
}

func (m *Ingest) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Ingest) IncRequeue() {
	if m == nil {
		return
	}
	m.requeues.Inc()
}
