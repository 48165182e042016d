package storesdk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// clientMetrics counts API traffic and token refreshes. Each Client gets a
// private registry unless one is supplied, so multiple clients in one
// process never collide on registration.
type clientMetrics struct {
	requestsTotal  *prometheus.CounterVec
	refreshesTotal *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	return &clientMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "API requests issued, by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		refreshesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storefront",
				Subsystem: "client",
				Name:      "token_refreshes_total",
				Help:      "Token refresh attempts, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (m *clientMetrics) observeRequest(method string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if apiErr, ok := AsAPIError(err); ok {
			outcome = string(apiErr.Kind)
		}
	}
	m.requestsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *clientMetrics) observeRefresh(ok bool) {
	if ok {
		m.refreshesTotal.WithLabelValues("success").Inc()
	} else {
		m.refreshesTotal.WithLabelValues("failure").Inc()
	}
}
