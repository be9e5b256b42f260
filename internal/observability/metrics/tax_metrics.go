package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

// TaxMetrics counts selection outcomes for every billing session.
// It satisfies selection.Recorder.
type TaxMetrics struct {
	toggles        *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	calculations   *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

var (
	taxMetricsOnce sync.Once
	taxMetrics     *TaxMetrics
)

// Tax returns the process-wide tax metrics registered on the default registry.
func Tax(cfg Config) *TaxMetrics {
	taxMetricsOnce.Do(func() {
		taxMetrics = newTaxMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return taxMetrics
}

func newTaxMetrics(registerer prometheus.Registerer, cfg Config) *TaxMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := serviceLabels(cfg)

	m := &TaxMetrics{
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gymdesk_tax_toggle_total",
			Help:        "Tax toggles by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gymdesk_tax_selection_rejected_total",
			Help:        "Bulk tax selections rejected by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gymdesk_tax_calculations_total",
			Help:        "Tax recalculations by resulting mode.",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gymdesk_billing_sessions_active",
			Help:        "Billing sessions currently open.",
			ConstLabels: constLabels,
		}),
	}

	registerer.MustRegister(m.toggles, m.rejections, m.calculations, m.activeSessions)
	return m
}

func (m *TaxMetrics) RecordToggle(accepted bool) {
	if m == nil {
		return
	}
	result := "accepted"
	if !accepted {
		result = "refused"
	}
	m.toggles.WithLabelValues(result).Inc()
}

func (m *TaxMetrics) RecordSelectionRejected(reason string) {
	if m == nil {
		return
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *TaxMetrics) RecordCalculation(mode taxdomain.TaxMode) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(string(mode)).Inc()
}

// SetActiveSessions reports the number of open billing sessions.
func (m *TaxMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func serviceLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "gymdesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
