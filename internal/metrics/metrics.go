// Package metrics exports poll and endpoint metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/gatusbridge/internal/entity"
	"github.com/jpalmerr/gatusbridge/internal/gatus"
	"github.com/jpalmerr/gatusbridge/internal/poller"
)

const namespace = "gatusbridge"

// OutcomeSuccess is the outcome label of a successful poll. Failed polls use
// the error kind name.
const OutcomeSuccess = "success"

// Collector records metrics for every configured instance.
//
// It implements [poller.Observer].
type Collector struct {
	polls       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	endpoints   *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
	problem     *prometheus.GaugeVec
}

// NewCollector creates a [Collector] and registers it on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Polls of the Gatus statuses API by outcome.",
		}, []string{"instance", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of polls of the Gatus statuses API.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"instance"}),
		endpoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoints",
			Help:      "Endpoints in the cached data of an instance.",
		}, []string{"instance"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_success",
			Help:      "1 if the latest poll succeeded, 0 otherwise.",
		}, []string{"instance"}),
		problem: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "endpoint_problem",
			Help:      "1 if the endpoint reports a problem, 0 otherwise.",
		}, []string{"instance", "key"}),
	}

	for _, col := range c.all() {
		if err := reg.Register(col); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, errors.New("metrics: collector already registered on this registry")
			}
			return nil, err
		}
	}
	return c, nil
}

// ObservePoll records one finished poll.
func (c *Collector) ObservePoll(o poller.PollOutcome) {
	outcome := OutcomeSuccess
	if o.Kind != gatus.KindNone {
		outcome = o.Kind.String()
	}

	c.polls.WithLabelValues(o.Name, outcome).Inc()
	c.duration.WithLabelValues(o.Name).Observe(o.Duration.Seconds())
	c.endpoints.WithLabelValues(o.Name).Set(float64(o.Endpoints))
	c.lastSuccess.WithLabelValues(o.Name).Set(boolToFloat(o.Kind == gatus.KindNone))
}

// ObserveState records the problem flag of a binary sensor. Other entity
// types are ignored.
func (c *Collector) ObserveState(st entity.State) {
	if st.Type != entity.TypeBinarySensor {
		return
	}
	c.problem.WithLabelValues(st.InstanceID, st.Key).Set(boolToFloat(st.Problem))
}

// DeleteInstance drops every series of instance.
func (c *Collector) DeleteInstance(instance string) {
	labels := prometheus.Labels{"instance": instance}
	c.polls.DeletePartialMatch(labels)
	c.duration.DeletePartialMatch(labels)
	c.endpoints.DeletePartialMatch(labels)
	c.lastSuccess.DeletePartialMatch(labels)
	c.problem.DeletePartialMatch(labels)
}

// Unregister removes every series of the collector from reg, so a new
// [Collector] can be registered there.
func (c *Collector) Unregister(reg prometheus.Registerer) {
	for _, col := range c.all() {
		reg.Unregister(col)
	}
}

func (c *Collector) all() []prometheus.Collector {
	return []prometheus.Collector{c.polls, c.duration, c.endpoints, c.lastSuccess, c.problem}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
