package outbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrMessageNotFound = errors.New("outbox message not found")

// Repository stores pending commits.
type Repository interface {
	// Save stores a new message and assigns its ID.
	Save(ctx context.Context, msg *Message) error

	// GetPending returns messages that are neither applied nor dead, in ID order.
	// Messages still waiting for a retry are included.
	GetPending(ctx context.Context, limit int) ([]*Message, error)

	// MarkApplied records a successful remote commit.
	MarkApplied(ctx context.Context, id int64) error

	// MarkFailed records a failed attempt and schedules the next one.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// MarkDead gives up on a message.
	MarkDead(ctx context.Context, id int64, reason string) error

	// GetDead returns dead-lettered messages, newest first.
	GetDead(ctx context.Context, limit int) ([]*Message, error)

	// DeleteApplied removes applied messages older than the retention period.
	DeleteApplied(ctx context.Context, olderThan time.Duration) (int64, error)
}

// MemoryRepository keeps the queue in process memory. The queue does not
// survive a restart.
type MemoryRepository struct {
	mu       sync.Mutex
	nextID   int64
	messages []*Message
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory queue.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (r *MemoryRepository) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.messages = append(r.messages, msg.Clone())
	return nil
}

func (r *MemoryRepository) GetPending(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Message
	for _, msg := range r.messages {
		if !msg.IsPending() {
			continue
		}
		out = append(out, msg.Clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkApplied(_ context.Context, id int64) error {
	return r.update(id, func(m *Message) {
		now := r.now()
		m.AppliedAt = &now
	})
}

func (r *MemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(id, func(m *Message) {
		m.RetryCount++
		m.LastError = &errMsg
		m.NextRetryAt = &nextRetryAt
	})
}

func (r *MemoryRepository) MarkDead(_ context.Context, id int64, reason string) error {
	return r.update(id, func(m *Message) {
		now := r.now()
		m.RetryCount++
		m.LastError = &reason
		m.DeadLetteredAt = &now
		m.DeadLetterReason = &reason
	})
}

func (r *MemoryRepository) GetDead(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if !r.messages[i].IsDead() {
			continue
		}
		out = append(out, r.messages[i].Clone())
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) DeleteApplied(_ context.Context, olderThan time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-olderThan)
	kept := r.messages[:0]
	var removed int64
	for _, msg := range r.messages {
		if msg.IsApplied() && msg.AppliedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return removed, nil
}

// Len returns the number of stored messages, applied ones included.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *MemoryRepository) update(id int64, fn func(*Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			fn(msg)
			return nil
		}
	}
	return ErrMessageNotFound
}
