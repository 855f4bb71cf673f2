// Package store holds the in-memory copy of one user's board, goals and
// daily plan for the lifetime of a session.
package store

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	planning "github.com/felixgeelhaar/grim/internal/planning/domain"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
)

// Status is the load state of the store.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the mutable content of the store. It is only reachable inside
// Mutate, while the write lock is held.
type State struct {
	Tasks         []task.Task
	Goals         []goal.Goal
	Assignments   planning.Assignments
	MicroWorkouts planning.MicroWorkouts
	EatNotes      planning.EatNotes
}

// Store is the canonical session copy. Reads return copies; every write
// happens under one lock so readers never see a half-applied mutation.
type Store struct {
	mu      sync.RWMutex
	state   State
	status  Status
	loadErr error
	version uint64
}

// New creates an empty, idle store.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.state = State{
		Tasks:         make([]task.Task, 0),
		Goals:         make([]goal.Goal, 0),
		Assignments:   planning.Assignments{},
		MicroWorkouts: planning.MicroWorkouts{},
		EatNotes:      planning.EatNotes{},
	}
}

// Tasks returns the tasks in global order.
func (s *Store) Tasks() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.state.Tasks)
}

// Goals returns the goals in load/creation order.
func (s *Store) Goals() []goal.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Goals)
}

func (s *Store) Assignments() planning.Assignments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Assignments.Clone()
}

func (s *Store) MicroWorkouts() planning.MicroWorkouts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.MicroWorkouts.Clone()
}

func (s *Store) EatNotes() planning.EatNotes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.EatNotes.Clone()
}

// Task looks up one task by id.
func (s *Store) Task(id uuid.UUID) (task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := task.IndexOf(s.state.Tasks, id); i >= 0 {
		return s.state.Tasks[i].Clone(), true
	}
	return task.Task{}, false
}

// Goal looks up one goal by id.
func (s *Store) Goal(id uuid.UUID) (goal.Goal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.state.Goals {
		if g.ID == id {
			return g, true
		}
	}
	return goal.Goal{}, false
}

// Status returns the load state and the error of a failed load.
func (s *Store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.loadErr
}

// Version increases on every change. Callers compare versions to decide
// whether to re-render.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// MarkLoading empties every collection and flags an outstanding bootstrap.
// Nothing of a previous identity survives into the next one's load.
func (s *Store) MarkLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.status = StatusLoading
	s.loadErr = nil
	s.version++
}

// MarkFailed records a failed bootstrap. The collections stay as
// MarkLoading left them, empty.
func (s *Store) MarkFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.loadErr = err
	s.version++
}

// ReplaceAll swaps in freshly loaded collections and marks the store ready.
// Side data is session-local and starts empty.
func (s *Store) ReplaceAll(tasks []task.Task, goals []goal.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.state.Tasks = cloneTasks(tasks)
	s.state.Goals = slices.Clone(goals)
	if s.state.Goals == nil {
		s.state.Goals = make([]goal.Goal, 0)
	}
	s.status = StatusReady
	s.loadErr = nil
	s.version++
}

// Clear empties every collection and returns the store to idle.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.status = StatusIdle
	s.loadErr = nil
	s.version++
}

// Mutate runs fn with exclusive access to the state. When fn returns an
// error the state is restored.
func (s *Store) Mutate(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := State{
		Tasks:         cloneTasks(s.state.Tasks),
		Goals:         slices.Clone(s.state.Goals),
		Assignments:   s.state.Assignments.Clone(),
		MicroWorkouts: s.state.MicroWorkouts.Clone(),
		EatNotes:      s.state.EatNotes.Clone(),
	}
	if err := fn(&s.state); err != nil {
		s.state = backup
		return err
	}
	s.version++
	return nil
}

func cloneTasks(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
