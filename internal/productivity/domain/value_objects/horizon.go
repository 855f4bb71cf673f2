package value_objects

import (
	"errors"
	"strings"
)

// Horizon is the time frame a goal is set for.
type Horizon int

const (
	HorizonYearly Horizon = iota + 1
	HorizonMonthly
	HorizonWeekly
)

var ErrInvalidHorizon = errors.New("invalid goal horizon")

// Horizons lists horizons from longest to shortest.
func Horizons() []Horizon {
	return []Horizon{HorizonYearly, HorizonMonthly, HorizonWeekly}
}

// ParseHorizon creates a Horizon from a string.
func ParseHorizon(s string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yearly":
		return HorizonYearly, nil
	case "monthly":
		return HorizonMonthly, nil
	case "weekly":
		return HorizonWeekly, nil
	default:
		return 0, ErrInvalidHorizon
	}
}

func (h Horizon) String() string {
	switch h {
	case HorizonYearly:
		return "yearly"
	case HorizonMonthly:
		return "monthly"
	case HorizonWeekly:
		return "weekly"
	default:
		return "unknown"
	}
}

// IsValid returns true if the horizon is a known value.
func (h Horizon) IsValid() bool {
	return h >= HorizonYearly && h <= HorizonWeekly
}

func (h Horizon) MarshalText() ([]byte, error) {
	if !h.IsValid() {
		return nil, ErrInvalidHorizon
	}
	return []byte(h.String()), nil
}

func (h *Horizon) UnmarshalText(text []byte) error {
	parsed, err := ParseHorizon(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
