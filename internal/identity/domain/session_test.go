package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestNewSession(t *testing.T) {
	_, err := domain.NewSession(uuid.Nil, domain.Email{}, nil, now)
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)

	id := uuid.New()
	s, err := domain.NewSession(id, domain.Email{}, nil, now)
	require.NoError(t, err)
	assert.Equal(t, id, s.UserID)
	assert.Equal(t, now, s.StartedAt)
}

func TestSameIdentity(t *testing.T) {
	id := uuid.New()
	a := &domain.Session{UserID: id, Token: &oauth2.Token{AccessToken: "one"}}
	refreshed := &domain.Session{UserID: id, Token: &oauth2.Token{AccessToken: "two"}}
	other := &domain.Session{UserID: uuid.New()}

	assert.True(t, domain.SameIdentity(a, refreshed))
	assert.False(t, domain.SameIdentity(a, other))
	assert.False(t, domain.SameIdentity(a, nil))
	assert.True(t, domain.SameIdentity(nil, nil))
}

func TestSession_CloneAndExpiry(t *testing.T) {
	s := &domain.Session{UserID: uuid.New(), Token: &oauth2.Token{AccessToken: "a", Expiry: now.Add(time.Minute)}}

	c := s.Clone()
	c.Token.AccessToken = "b"
	assert.Equal(t, "a", s.Token.AccessToken)

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
	assert.False(t, (&domain.Session{UserID: uuid.New()}).Expired(now))
	assert.Nil(t, (*domain.Session)(nil).Clone())
}
