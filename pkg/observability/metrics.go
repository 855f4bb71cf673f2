package observability

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics receives counters, gauges and timings. Hosts that export metrics
// plug their sink in here; the container keeps an in-memory one.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Timing(name string, d time.Duration, tags ...Tag)
}

// Tag labels a metric sample.
type Tag struct {
	Key   string
	Value string
}

// T is shorthand for Tag{key, value}.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// Metric names.
const (
	MetricOperationTotal    = "grim.operation.total"
	MetricOperationDuration = "grim.operation.duration"
	MetricOperationErrors   = "grim.operation.errors"

	MetricCommitsApplied = "grim.commits.applied"
	MetricCommitsFailed  = "grim.commits.failed"
	MetricCommitsDead    = "grim.commits.dead"
	MetricCommitLag      = "grim.commits.lag_seconds"

	MetricMutations       = "grim.mutations.total"
	MetricMutationsDenied = "grim.mutations.rejected"

	MetricBootstrapDuration = "grim.bootstrap.duration"
	MetricBootstrapErrors   = "grim.bootstrap.errors"
	MetricSessionChanges    = "grim.session.changes"

	MetricGatewayCalls   = "grim.gateway.calls"
	MetricGatewayErrors  = "grim.gateway.errors"
	MetricBreakerChanges = "grim.gateway.breaker_state_changes"
)

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps every series in process. Series are keyed by name
// and tag set; tag order does not matter.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

// NewInMemoryMetrics returns an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.counters[k] += value
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.gauges[k] = value
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Timing(name string, d time.Duration, tags ...Tag) {
	k := seriesKey(name, tags)
	m.mu.Lock()
	m.timings[k] = append(m.timings[k], d)
	m.mu.Unlock()
}

// GetCounter returns the counter's total.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[seriesKey(name, tags)]
}

// GetGauge returns the gauge's last value.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[seriesKey(name, tags)]
}

// GetTimings returns a copy of the recorded durations.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.timings[seriesKey(name, tags)])
}

// seriesKey renders name{k1=v1,k2=v2} with tags sorted by key.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := slices.Clone(tags)
	slices.SortFunc(sorted, func(a, b Tag) int { return strings.Compare(a.Key, b.Key) })

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, t := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	b.WriteByte('}')
	return b.String()
}
