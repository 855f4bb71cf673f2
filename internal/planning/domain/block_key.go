package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDay      = errors.New("invalid schedule day")
	ErrInvalidBlockKey = errors.New("invalid block key")
	ErrUnknownBlock    = errors.New("block not in schedule")
)

// Day is a working day of the weekly plan.
type Day string

const (
	Monday    Day = "Mon"
	Tuesday   Day = "Tue"
	Wednesday Day = "Wed"
	Thursday  Day = "Thu"
	Friday    Day = "Fri"
)

// Days returns the planned days in week order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// ParseDay accepts the short day name, ignoring case.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for _, d := range Days() {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// IsValid returns true for Mon through Fri.
func (d Day) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday:
		return true
	default:
		return false
	}
}

// Today maps now onto the plan. Weekends fall back to Monday.
func Today(now time.Time) Day {
	switch now.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	default:
		return Monday
	}
}

// BlockKey addresses one block of a day's schedule by zero-based index.
type BlockKey struct {
	Day   Day
	Index int
}

// NewBlockKey builds a key without checking it against a schedule.
func NewBlockKey(day Day, index int) BlockKey {
	return BlockKey{Day: day, Index: index}
}

// String renders the key as "Mon-2".
func (k BlockKey) String() string {
	return string(k.Day) + "-" + strconv.Itoa(k.Index)
}

// ParseBlockKey reads the "Mon-2" form.
func ParseBlockKey(s string) (BlockKey, error) {
	dayPart, idxPart, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return BlockKey{}, fmt.Errorf("%w: %q", ErrInvalidBlockKey, s)
	}
	day, err := ParseDay(dayPart)
	if err != nil {
		return BlockKey{}, fmt.Errorf("%w: %q", ErrInvalidBlockKey, s)
	}
	idx, err := strconv.Atoi(idxPart)
	if err != nil || idx < 0 {
		return BlockKey{}, fmt.Errorf("%w: %q", ErrInvalidBlockKey, s)
	}
	return BlockKey{Day: day, Index: idx}, nil
}

func (k BlockKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BlockKey) UnmarshalText(text []byte) error {
	parsed, err := ParseBlockKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
