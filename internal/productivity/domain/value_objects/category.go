package value_objects

import (
	"errors"
	"strings"
)

// Category splits work between the professional and private spheres.
type Category int

const (
	CategoryProfessional Category = iota + 1
	CategoryPrivate
)

var ErrInvalidCategory = errors.New("invalid category value")

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryProfessional, CategoryPrivate}
}

// ParseCategory creates a Category from a string.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "professional":
		return CategoryProfessional, nil
	case "private":
		return CategoryPrivate, nil
	default:
		return 0, ErrInvalidCategory
	}
}

func (c Category) String() string {
	switch c {
	case CategoryProfessional:
		return "professional"
	case CategoryPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// IsValid returns true if the category is a known value.
func (c Category) IsValid() bool {
	return c == CategoryProfessional || c == CategoryPrivate
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, ErrInvalidCategory
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
