package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ledger counters. A nil *Metrics is valid and records
// nothing, so tests can run the service without touching the default
// prometheus registry.
type Metrics struct {
	ChargesAdmitted     *prometheus.CounterVec
	ChargesDenied       *prometheus.CounterVec
	UnrestrictedCharges prometheus.Counter
	AttributionEvents   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ChargesAdmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payg_ledger_charges_admitted_total",
			Help: "Total number of policy-admitted charges",
		}, []string{"category"}),
		ChargesDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "payg_ledger_charges_denied_total",
			Help: "Total number of charges denied by policy",
		}, []string{"rule"}),
		UnrestrictedCharges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payg_ledger_unrestricted_charges_total",
			Help: "Total number of charges recorded through the unrestricted path",
		}),
		AttributionEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "payg_ledger_attribution_events_total",
			Help: "Total number of attribution events ingested",
		}),
	}
}

func (m *Metrics) IncrementAdmitted(category string) {
	if m == nil {
		return
	}
	m.ChargesAdmitted.WithLabelValues(category).Inc()
}

func (m *Metrics) IncrementDenied(rule string) {
	if m == nil {
		return
	}
	m.ChargesDenied.WithLabelValues(rule).Inc()
}

func (m *Metrics) IncrementUnrestricted() {
	if m == nil {
		return
	}
	m.UnrestrictedCharges.Inc()
}

func (m *Metrics) IncrementAttributionEvents() {
	if m == nil {
		return
	}
	m.AttributionEvents.Inc()
}
