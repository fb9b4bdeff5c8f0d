package signingkeys

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "paymentdata"

type metrics struct {
	refreshes   *prometheus.CounterVec
	keys        *prometheus.GaugeVec
	staleServed prometheus.Counter
}

// newMetrics builds the cache collectors and registers them with reg. A nil
// registerer leaves them unregistered. Collectors already registered by
// another cache are reused.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "signing_key_refreshes_total",
			Help:      "Signing key directory refresh attempts by result.",
		}, []string{"result"}),
		keys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "signing_keys",
			Help:      "Signing keys in the current generation by protocol version.",
		}, []string{"protocol_version"}),
		staleServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "signing_key_stale_served_total",
			Help:      "Lookups answered from a stale generation after a failed refresh.",
		}),
	}
	if reg == nil {
		return m
	}

	m.refreshes = register(reg, m.refreshes)
	m.keys = register(reg, m.keys)
	m.staleServed = register(reg, m.staleServed)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) refresh(result string) {
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *metrics) setKeys(counts map[string]int) {
	m.keys.Reset()
	for version, n := range counts {
		m.keys.WithLabelValues(version).Set(float64(n))
	}
}
