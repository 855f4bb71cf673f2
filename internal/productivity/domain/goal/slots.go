package goal

import "github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"

// Slot is a (horizon, category) cell in the goal grid.
type Slot struct {
	Horizon  value_objects.Horizon
	Category value_objects.Category
}

func (s Slot) String() string {
	return s.Horizon.String() + "/" + s.Category.String()
}

// Slots enumerates the grid row by row: yearly, monthly, weekly.
func Slots() []Slot {
	out := make([]Slot, 0, len(value_objects.Horizons())*len(value_objects.Categories()))
	for _, h := range value_objects.Horizons() {
		for _, c := range value_objects.Categories() {
			out = append(out, Slot{Horizon: h, Category: c})
		}
	}
	return out
}

// CanAdd reports whether no goal already holds the (horizon, category) slot.
func CanAdd(goals []Goal, horizon value_objects.Horizon, category value_objects.Category) bool {
	for _, g := range goals {
		if g.Horizon == horizon && g.Category == category {
			return false
		}
	}
	return true
}

// OccupiedSlots maps each occupied slot to the first goal found in it.
// Loaded data may hold more than one goal per slot; later ones are ignored here.
func OccupiedSlots(goals []Goal) map[Slot]Goal {
	out := make(map[Slot]Goal, len(goals))
	for _, g := range goals {
		if _, ok := out[g.Slot()]; !ok {
			out[g.Slot()] = g
		}
	}
	return out
}
