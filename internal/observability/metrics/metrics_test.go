package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCounters_Scrapable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngest(reg)
	m.IncOutcome("committed")
	m.IncOutcome("committed")
	m.IncRequeue()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `nfe_ingest_outcomes_total{outcome="committed"} 2`)
	assert.Contains(t, body, "nfe_ingest_requeues_total 1")
}

func TestIngest_NilReceiverIsNoop(t *testing.T) {
	var m *Ingest
	m.IncOutcome("dropped")
	m.IncRequeue()
}
