package obsmetrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNewRegistersAllCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	m.ObserveValidation("passed", 5*time.Millisecond)
	m.ObserveViolation("NoWhereClause", "CRITICAL")

	assert1 := counterValue(t, m.ValidationsTotal.WithLabelValues("passed"))
	require.Equal(t, 1.0, assert1)

	assert2 := counterValue(t, m.ViolationsTotal.WithLabelValues("NoWhereClause", "CRITICAL"))
	require.Equal(t, 1.0, assert2)
}

func TestDedupAndParseFailureCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.DedupSkipsTotal.Inc()
	m.ParseFailuresTotal.Inc()

	require.Equal(t, 1.0, counterValue(t, m.DedupSkipsTotal))
	require.Equal(t, 1.0, counterValue(t, m.ParseFailuresTotal))
}

func TestCheckerAndRewriterCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.CheckerPanicsTotal.WithLabelValues("DummyCondition").Inc()
	m.RewritesAppliedTotal.WithLabelValues("TenantIsolation").Inc()
	m.RewriterFailuresTotal.WithLabelValues("SoftDelete").Inc()

	require.Equal(t, 1.0, counterValue(t, m.CheckerPanicsTotal.WithLabelValues("DummyCondition")))
	require.Equal(t, 1.0, counterValue(t, m.RewritesAppliedTotal.WithLabelValues("TenantIsolation")))
	require.Equal(t, 1.0, counterValue(t, m.RewriterFailuresTotal.WithLabelValues("SoftDelete")))
}
