// Package metrics счётчики Prometheus для решений гейта и переходов подписок.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор счётчиков сервиса. Нулевой указатель допустим: методы ничего не делают.
type Metrics struct {
	gateDecisions *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// New регистрирует счётчики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movibes",
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions by resulting action.",
		}, []string{"action"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movibes",
			Name:      "subscription_transitions_total",
			Help:      "Subscription lifecycle transitions by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.gateDecisions, m.transitions)
	return m
}

// GateDecision учитывает решение гейта.
func (m *Metrics) GateDecision(action string) {
	if m == nil {
		return
	}
	m.gateDecisions.WithLabelValues(action).Inc()
}

// Transition учитывает переход подписки: purchase, cancel, renew, activate, expire.
func (m *Metrics) Transition(kind string) {
	m.TransitionN(kind, 1)
}

// TransitionN учитывает n переходов одного вида.
func (m *Metrics) TransitionN(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transitions.WithLabelValues(kind).Add(float64(n))
}
