package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthStatus is the state of one dependency or of the whole host.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// severity orders statuses so the worst one wins.
func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	}
	return 0
}

// HealthCheckResult is one checker's verdict.
type HealthCheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) HealthCheckResult

// OverallHealth is the outcome of one HealthRegistry.Check run.
type OverallHealth struct {
	Status    HealthStatus                 `json:"status"`
	Timestamp time.Time                    `json:"timestamp"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthRegistry holds the checkers the container registers as it wires
// the row store, the session cache, the broker and the commit queue.
type HealthRegistry struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
	timeout  time.Duration
}

// NewHealthRegistry returns a registry whose checks each get five seconds.
func NewHealthRegistry() *HealthRegistry {
	return &HealthRegistry{checkers: make(map[string]HealthChecker), timeout: 5 * time.Second}
}

// Register adds or replaces the checker for name.
func (r *HealthRegistry) Register(name string, checker HealthChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Check runs every checker concurrently. The overall status is the worst
// individual status; an empty registry is healthy.
func (r *HealthRegistry) Check(ctx context.Context) OverallHealth {
	r.mu.RLock()
	checkers := make(map[string]HealthChecker, len(r.checkers))
	for name, c := range r.checkers {
		checkers[name] = c
	}
	r.mu.RUnlock()

	var (
		mu      sync.Mutex
		results = make(map[string]HealthCheckResult, len(checkers))
	)
	var g errgroup.Group
	for name, check := range checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			res := check(cctx)
			res.Duration = time.Since(start)

			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	overall := OverallHealth{Status: HealthStatusHealthy, Timestamp: time.Now(), Checks: results}
	for _, res := range results {
		if res.Status.severity() > overall.Status.severity() {
			overall.Status = res.Status
		}
	}
	return overall
}

func pingChecker(name string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		if err := ping(ctx); err != nil {
			return HealthCheckResult{Status: failStatus, Message: name + " unreachable: " + err.Error()}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: name + " reachable"}
	}
}

// DatabaseHealthChecker checks the remote row store. Without it no commit
// can land, so a failure is unhealthy.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker checks the session cache. Sessions fall back to memory,
// so a failure only degrades.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("redis", HealthStatusDegraded, ping)
}

// RabbitMQHealthChecker checks the commit-outcome broker.
func RabbitMQHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("rabbitmq", HealthStatusDegraded, ping)
}

// CommitQueueStats is what the commit queue check looks at.
type CommitQueueStats struct {
	Pending     int
	Dead        int
	LastFailure string
}

// CommitQueueHealthChecker reports degraded while commits are dead-lettered
// or the backlog exceeds maxPending.
func CommitQueueHealthChecker(stats func(ctx context.Context) (CommitQueueStats, error), maxPending int) HealthChecker {
	return func(ctx context.Context) HealthCheckResult {
		st, err := stats(ctx)
		switch {
		case err != nil:
			return HealthCheckResult{Status: HealthStatusUnhealthy, Message: "commit queue unavailable: " + err.Error()}
		case st.Dead > 0:
			msg := fmt.Sprintf("%d commits dead-lettered", st.Dead)
			if st.LastFailure != "" {
				msg += ", last: " + st.LastFailure
			}
			return HealthCheckResult{Status: HealthStatusDegraded, Message: msg}
		case maxPending > 0 && st.Pending > maxPending:
			return HealthCheckResult{Status: HealthStatusDegraded, Message: fmt.Sprintf("%d commits pending", st.Pending)}
		}
		return HealthCheckResult{Status: HealthStatusHealthy, Message: fmt.Sprintf("%d commits pending", st.Pending)}
	}
}
