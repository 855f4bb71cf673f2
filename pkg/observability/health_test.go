package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestHealthRegistry_WorstStatusWins(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", DatabaseHealthChecker(ok))
	r.Register("redis", RedisHealthChecker(func(context.Context) error { return errors.New("connection refused") }))

	overall := r.Check(context.Background())
	require.Len(t, overall.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, overall.Checks["database"].Status)
	assert.Equal(t, HealthStatusDegraded, overall.Checks["redis"].Status)
	assert.Contains(t, overall.Checks["redis"].Message, "connection refused")
	assert.Equal(t, HealthStatusDegraded, overall.Status)

	r.Register("database", DatabaseHealthChecker(func(context.Context) error { return errors.New("no such file") }))
	assert.Equal(t, HealthStatusUnhealthy, r.Check(context.Background()).Status)
}

func TestHealthRegistry_Empty(t *testing.T) {
	overall := NewHealthRegistry().Check(context.Background())
	assert.Equal(t, HealthStatusHealthy, overall.Status)
	assert.Empty(t, overall.Checks)
}

func TestHealthRegistry_CheckTimeout(t *testing.T) {
	r := NewHealthRegistry()
	r.timeout = 10 * time.Millisecond
	r.Register("rabbitmq", RabbitMQHealthChecker(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	overall := r.Check(context.Background())
	assert.Equal(t, HealthStatusDegraded, overall.Status)
	assert.Contains(t, overall.Checks["rabbitmq"].Message, "deadline exceeded")
}

func TestCommitQueueHealthChecker(t *testing.T) {
	tests := []struct {
		name    string
		stats   CommitQueueStats
		err     error
		want    HealthStatus
		message string
	}{
		{"idle", CommitQueueStats{}, nil, HealthStatusHealthy, "0 commits pending"},
		{"dead letters", CommitQueueStats{Dead: 2, LastFailure: "row not found"}, nil, HealthStatusDegraded, "2 commits dead-lettered, last: row not found"},
		{"backlog", CommitQueueStats{Pending: 51}, nil, HealthStatusDegraded, "51 commits pending"},
		{"error", CommitQueueStats{}, errors.New("x"), HealthStatusUnhealthy, "commit queue unavailable: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CommitQueueHealthChecker(func(context.Context) (CommitQueueStats, error) {
				return tt.stats, tt.err
			}, 50)
			result := check(context.Background())
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.message, result.Message)
		})
	}
}
