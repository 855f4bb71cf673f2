package domain

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Assignments maps a block to the tasks planned in it. A key never lists
// the same task twice. Ids are not checked against the board.
type Assignments map[BlockKey][]uuid.UUID

// Assign appends taskID to key unless it is already there.
func (a Assignments) Assign(key BlockKey, taskID uuid.UUID) bool {
	if slices.Contains(a[key], taskID) {
		return false
	}
	a[key] = append(a[key], taskID)
	return true
}

// Unassign removes taskID from key. Empty lists are dropped.
func (a Assignments) Unassign(key BlockKey, taskID uuid.UUID) bool {
	ids := a[key]
	i := slices.Index(ids, taskID)
	if i < 0 {
		return false
	}
	ids = slices.Delete(slices.Clone(ids), i, i+1)
	if len(ids) == 0 {
		delete(a, key)
	} else {
		a[key] = ids
	}
	return true
}

// Clone deep-copies the map.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for k, ids := range a {
		out[k] = slices.Clone(ids)
	}
	return out
}

// MicroWorkouts records which blocks had their micro-workout done.
type MicroWorkouts map[BlockKey]bool

// Toggle flips the flag for key, treating an absent key as false.
func (m MicroWorkouts) Toggle(key BlockKey) bool {
	m[key] = !m[key]
	return m[key]
}

func (m MicroWorkouts) Clone() MicroWorkouts {
	out := make(MicroWorkouts, len(m))
	maps.Copy(out, m)
	return out
}

// EatNotes holds the meal note per block. An empty note is stored as given.
type EatNotes map[BlockKey]string

func (e EatNotes) Set(key BlockKey, text string) {
	e[key] = text
}

func (e EatNotes) Clone() EatNotes {
	out := make(EatNotes, len(e))
	maps.Copy(out, e)
	return out
}
