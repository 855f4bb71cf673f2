package persistence

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// MemoryTaskGateway keeps task rows in process. Used for demos and tests.
type MemoryTaskGateway struct {
	mu   sync.Mutex
	rows []task.Task
	now  func() time.Time
}

// NewMemoryTaskGateway creates an empty in-memory task store.
func NewMemoryTaskGateway() *MemoryTaskGateway {
	return &MemoryTaskGateway{now: time.Now}
}

var _ task.Gateway = (*MemoryTaskGateway)(nil)

func (g *MemoryTaskGateway) List(ctx context.Context, ownerID uuid.UUID) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]task.Task, 0)
	for _, t := range g.rows {
		if t.UserID == ownerID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (g *MemoryTaskGateway) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if task.IndexOf(g.rows, t.ID) >= 0 {
		return task.Task{}, fmt.Errorf("task %s: %w", t.ID, ErrAlreadyExists)
	}
	g.rows = append(g.rows, t.Clone())
	return t.Clone(), nil
}

func (g *MemoryTaskGateway) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	i := task.IndexOf(g.rows, id)
	if i < 0 || g.rows[i].UserID != ownerID {
		return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	updated, err := patch.Apply(g.rows[i], g.now())
	if err != nil {
		return err
	}
	g.rows[i] = updated
	return nil
}

func (g *MemoryTaskGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rows = slices.DeleteFunc(g.rows, func(t task.Task) bool {
		return t.ID == id && t.UserID == ownerID
	})
	return nil
}

// MemoryGoalGateway keeps goal rows in process.
type MemoryGoalGateway struct {
	mu   sync.Mutex
	rows []goal.Goal
	now  func() time.Time
}

// NewMemoryGoalGateway creates an empty in-memory goal store.
func NewMemoryGoalGateway() *MemoryGoalGateway {
	return &MemoryGoalGateway{now: time.Now}
}

var _ goal.Gateway = (*MemoryGoalGateway)(nil)

func (g *MemoryGoalGateway) List(ctx context.Context, ownerID uuid.UUID) ([]goal.Goal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]goal.Goal, 0)
	for _, gl := range g.rows {
		if gl.UserID == ownerID {
			out = append(out, gl)
		}
	}
	return out, nil
}

func (g *MemoryGoalGateway) Insert(ctx context.Context, gl goal.Goal) (goal.Goal, error) {
	if err := ctx.Err(); err != nil {
		return goal.Goal{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.index(gl.ID) >= 0 {
		return goal.Goal{}, fmt.Errorf("goal %s: %w", gl.ID, ErrAlreadyExists)
	}
	g.rows = append(g.rows, gl)
	return gl, nil
}

func (g *MemoryGoalGateway) UpdateProgress(ctx context.Context, ownerID, id uuid.UUID, progress int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.index(id)
	if i < 0 || g.rows[i].UserID != ownerID {
		return fmt.Errorf("goal %s: %w", id, ErrGoalNotFound)
	}
	g.rows[i].Progress = progress
	g.rows[i].UpdatedAt = g.now().UTC()
	return nil
}

func (g *MemoryGoalGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rows = slices.DeleteFunc(g.rows, func(gl goal.Goal) bool {
		return gl.ID == id && gl.UserID == ownerID
	})
	return nil
}

func (g *MemoryGoalGateway) index(id uuid.UUID) int {
	return slices.IndexFunc(g.rows, func(gl goal.Goal) bool { return gl.ID == id })
}
