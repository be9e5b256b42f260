package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/stretchr/testify/assert"
)

func TestTaxMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newTaxMetrics(registry, Config{ServiceName: "gymdesk", Environment: "test"})

	m.RecordToggle(true)
	m.RecordToggle(true)
	m.RecordToggle(false)
	m.RecordSelectionRejected("mixed_tax_modes")
	m.RecordSelectionRejected("")
	m.RecordCalculation(taxdomain.TaxModeExclusive)
	m.RecordCalculation(taxdomain.TaxModeUnset)
	m.RecordCalculation(taxdomain.TaxModeExclusive)
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toggles.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toggles.WithLabelValues("refused")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("mixed_tax_modes")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("unknown")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.calculations.WithLabelValues("exclusive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.calculations.WithLabelValues("unset")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}

func TestTaxMetrics_NilSafe(t *testing.T) {
	var m *TaxMetrics
	m.RecordToggle(true)
	m.RecordSelectionRejected("x")
	m.RecordCalculation(taxdomain.TaxModeInclusive)
	m.SetActiveSessions(1)
}
