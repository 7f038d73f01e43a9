package logic

import (
	"errors"
	"fedi_engine/shared"
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

const metricsNamespace = "fedi"

type IMetrics interface {
	StartApubRequestIn(label string) IRequestObserver
	StartApubRequestOut(label string) IRequestObserver
	InboxActivity(activityType, outcome string)
	DeliveryOutcome(outcome string)
	DeliveryQueueLength(length int)
	InstanceSuspended(state string)
	ServiceStarted()
}

type IRequestObserver interface {
	Finish()
}

type metrics struct {
	cfg                 *shared.Config
	apubRequestsIn      *prometheus.HistogramVec
	apubRequestsOut     *prometheus.HistogramVec
	inboxActivities     *prometheus.CounterVec
	deliveryOutcomes    *prometheus.CounterVec
	deliveryQueueLength prometheus.Gauge
	instancesSuspended  *prometheus.CounterVec
	serviceStarted      prometheus.Counter
}

func NewMetrics(cfg *shared.Config) IMetrics {

	res := metrics{}
	res.cfg = cfg

	res.apubRequestsIn = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "apub_requests_in_duration",
		Help:      "Duration in seconds of ActivityPub requests served.",
	}, []string{"label"})
	res.apubRequestsIn = register(res.apubRequestsIn)

	res.apubRequestsOut = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "apub_requests_out_duration",
		Help:      "Duration in seconds of ActivityPub requests made.",
	}, []string{"label"})
	res.apubRequestsOut = register(res.apubRequestsOut)

	res.inboxActivities = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "inbox_activities",
		Help:      "Inbox activities processed, by type and outcome",
	}, []string{"type", "outcome"})
	res.inboxActivities = register(res.inboxActivities)

	res.deliveryOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "delivery_outcomes",
		Help:      "Delivery jobs processed, by outcome",
	}, []string{"outcome"})
	res.deliveryOutcomes = register(res.deliveryOutcomes)

	res.deliveryQueueLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "delivery_queue_length",
		Help:      "Jobs in delivery queue",
	})
	res.deliveryQueueLength = register(res.deliveryQueueLength)

	res.instancesSuspended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "instances_suspended",
		Help:      "Instances suspended by the delivery processor, by suspension state",
	}, []string{"state"})
	res.instancesSuspended = register(res.instancesSuspended)

	res.serviceStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "service_started",
		Help:      "Service has started up",
	})
	res.serviceStarted = register(res.serviceStarted)

	return &res
}

// register hands back the collector already registered under the same name, so every
// metrics instance in a process feeds the same series.
func register[T prometheus.Collector](c T) T {
	var dupErr prometheus.AlreadyRegisteredError
	if err := prometheus.Register(c); errors.As(err, &dupErr) {
		if existing, ok := dupErr.ExistingCollector.(T); ok {
			return existing
		}
	}
	return c
}

type requestObserver struct {
	label string
	start time.Time
	hgvec *prometheus.HistogramVec
}

func (ro *requestObserver) Finish() {
	now := time.Now()
	elapsed := float64(now.UnixMilli()-ro.start.UnixMilli()) / 1000.0
	ro.hgvec.WithLabelValues(ro.label).Observe(elapsed)
}

func (m *metrics) StartApubRequestIn(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.apubRequestsIn}
}

func (m *metrics) StartApubRequestOut(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.apubRequestsOut}
}

// InboxActivity counts one processed activity; outcome is reduced to its class (ok, skip, error).
func (m *metrics) InboxActivity(activityType, outcome string) {
	m.inboxActivities.WithLabelValues(activityType, outcomeClass(outcome)).Add(1)
}

func (m *metrics) DeliveryOutcome(outcome string) {
	m.deliveryOutcomes.WithLabelValues(outcome).Add(1)
}

func (m *metrics) DeliveryQueueLength(length int) {
	m.deliveryQueueLength.Set(float64(length))
}

func (m *metrics) InstanceSuspended(state string) {
	m.instancesSuspended.WithLabelValues(state).Add(1)
}

func (m *metrics) ServiceStarted() {
	m.serviceStarted.Add(1)
}

func outcomeClass(outcome string) string {
	switch {
	case len(outcome) >= 2 && outcome[:2] == "ok":
		return "ok"
	case len(outcome) >= 4 && outcome[:4] == "skip":
		return "skip"
	default:
		return "error"
	}
}
