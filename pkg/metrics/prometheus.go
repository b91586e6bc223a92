// Package metrics provides Prometheus metrics for the contract resolution engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the engine exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Resolution pipeline
	skillTests       *prometheus.CounterVec
	skillTestChance  prometheus.Histogram
	jobTransitions   *prometheus.CounterVec
	equips           *prometheus.CounterVec
	claims           *prometheus.CounterVec
	prestigeDelta    prometheus.Histogram
	factionDeltas    *prometheus.CounterVec
	threatDecays     prometheus.Counter
	narrativeResults *prometheus.CounterVec
	payoutCommission prometheus.Counter
	payoutResidual   prometheus.Counter

	// Sweep queue and workers
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	sweepDuplicates        prometheus.Counter
	workerCount            prometheus.Gauge
	workerProcessingTimeMs prometheus.Histogram
	workerErrors           prometheus.Counter

	// Storage
	storeTxLatency *prometheus.HistogramVec
	rankedProfiles prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "merc",
		subsystem:        "resolution",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.skillTests = m.counterVec("skill_tests_total", "Skill tests evaluated by skill and result", "skill", "result")
	m.skillTestChance = m.histogram("skill_test_chance", "Clamped success chance of evaluated skill tests",
		[]float64{0.05, 0.15, 0.25, 0.35, 0.5, 0.65, 0.75, 0.85, 0.95})
	m.jobTransitions = m.counterVec("job_transitions_total", "Job life-cycle transitions", "from", "to")
	m.equips = m.counterVec("equips_total", "Program equip attempts by result", "result")
	m.claims = m.counterVec("claims_total", "Resolution claims by result", "result")
	m.prestigeDelta = m.histogram("prestige_delta", "Signed prestige delta applied per claim",
		[]float64{-400, -200, -100, -50, -10, 0, 10, 50, 100, 200, 400})
	m.factionDeltas = m.counterVec("faction_deltas_total", "Faction relation mutations by faction and sign", "faction", "sign")
	m.threatDecays = m.counter("threat_decays_total", "Faction threat entries reduced by idle decay")
	m.narrativeResults = m.counterVec("narrative_results_total", "Narrative generation results", "result")
	m.payoutCommission = m.counter("payout_commission_total", "Currency credited to owners via commission")
	m.payoutResidual = m.counter("payout_residual_total", "Currency lost to share flooring")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the sweep queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum sweep queue capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs enqueued for advancement")
	m.queueDequeued = m.counter("queue_dequeued_total", "Jobs dequeued by workers")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by the sweep queue")
	m.sweepDuplicates = m.counter("sweep_duplicates_total", "Jobs skipped because they were already in flight")
	m.workerCount = m.gauge("worker_count", "Workers consuming the sweep queue")
	m.workerProcessingTimeMs = m.histogram("worker_processing_milliseconds", "Time spent advancing one job", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs a worker failed to advance")

	m.storeTxLatency = m.histogramVec("store_tx_milliseconds", "Storage transaction latency", m.histogramBuckets, "op")
	m.rankedProfiles = m.gauge("ranked_profiles", "Prestige profiles in the ranking index")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration",
		m.histogramBuckets, "endpoint", "method", "status_code")
	m.rateLimited = m.counterVec("rate_limited_total", "Requests rejected by the per-requester limiter", "endpoint")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

func boolLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

// RecordSkillTest counts one skill test and observes its chance.
func RecordSkillTest(skill string, success bool, chance float64) {
	globalManager.skillTests.WithLabelValues(skill, boolLabel(success, "pass", "fail")).Inc()
	globalManager.skillTestChance.Observe(chance)
}

// RecordJobTransition counts one life-cycle transition.
func RecordJobTransition(from, to string) {
	globalManager.jobTransitions.WithLabelValues(from, to).Inc()
}

// RecordEquip counts an equip attempt; result is "ok" or an error kind.
func RecordEquip(result string) {
	globalManager.equips.WithLabelValues(result).Inc()
}

// RecordClaim counts a claim; result is "applied", "replayed" or an error kind.
func RecordClaim(result string) {
	globalManager.claims.WithLabelValues(result).Inc()
}

// RecordPrestigeDelta observes the signed prestige change of a claim.
func RecordPrestigeDelta(delta int) {
	globalManager.prestigeDelta.Observe(float64(delta))
}

// RecordFactionDelta counts a relation mutation.
func RecordFactionDelta(faction string, delta int) {
	sign := "zero"
	switch {
	case delta > 0:
		sign = "positive"
	case delta < 0:
		sign = "negative"
	}
	globalManager.factionDeltas.WithLabelValues(faction, sign).Inc()
}

// RecordThreatDecays adds n decayed threat entries.
func RecordThreatDecays(n int) {
	globalManager.threatDecays.Add(float64(n))
}

// RecordNarrative counts narrative outcomes: "generated" or "fallback".
func RecordNarrative(result string) {
	globalManager.narrativeResults.WithLabelValues(result).Inc()
}

// RecordPayout adds commission and flooring residual from one settlement.
func RecordPayout(commission, residual int64) {
	globalManager.payoutCommission.Add(float64(commission))
	globalManager.payoutResidual.Add(float64(residual))
}

// UpdateQueueSize sets the current sweep queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the sweep queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordSweepDuplicate counts a job skipped because it was already in flight.
func RecordSweepDuplicate() {
	globalManager.sweepDuplicates.Inc()
}

// UpdateWorkerCount sets the number of sweep workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes how long a worker spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingTimeMs.Observe(latencyMs)
}

// RecordWorkerError counts a failed advancement.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordStoreTx observes the latency of a storage transaction.
func RecordStoreTx(op string, latencyMs float64) {
	globalManager.storeTxLatency.WithLabelValues(op).Observe(latencyMs)
}

// UpdateRankedProfiles sets the number of profiles in the ranking index.
func UpdateRankedProfiles(count int) {
	globalManager.rankedProfiles.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the limiter.
func RecordRateLimited(endpoint string) {
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap size in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
