// Package observability provides metrics and tracing.
package observability

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostTransitions counts blog post lifecycle transitions by resulting state.
	PostTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_post_transitions_total",
		Help: "Total number of blog post lifecycle transitions by resulting state",
	}, []string{"state"})

	// MailDeliveries counts outbound email attempts by result.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_mail_deliveries_total",
		Help: "Total number of outbound email sends by result",
	}, []string{"result"})

	// Uploads counts asset uploads by result.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_uploads_total",
		Help: "Total number of asset uploads by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scaffold_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide HTTP metrics middleware. The collectors
// register with the default registry once, however many servers are built.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// RecordResult increments vec for ok/failed outcomes.
func RecordResult(vec *prometheus.CounterVec, ok bool) {
	if ok {
		vec.WithLabelValues("success").Inc()
		return
	}
	vec.WithLabelValues("failure").Inc()
}
