package domain

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrInvalidEmail = errors.New("invalid email address")

// Email is a bare, lower-cased address as returned by the identity
// provider. The zero value means "unknown".
type Email struct {
	value string
}

// NewEmail validates value. Display-name forms such as
// "Ada <ada@example.com>" are rejected; only the bare address is accepted.
func NewEmail(value string) (Email, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return Email{}, ErrInvalidEmail
	}
	host := value[strings.LastIndexByte(value, '@')+1:]
	if !strings.Contains(host, ".") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string { return e.value }

// IsZero reports whether no address is set.
func (e Email) IsZero() bool { return e.value == "" }

func (e Email) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

// UnmarshalText accepts an empty string as the zero Email.
func (e *Email) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*e = Email{}
		return nil
	}
	parsed, err := NewEmail(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
