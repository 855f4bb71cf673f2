package persistence

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/identity/domain"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/crypto"
)

// sealedPrefix marks an encrypted payload. Plain JSON always starts with '{'.
var sealedPrefix = []byte("sealed:")

// ErrSealedSession is returned when a sealed session is read without a key.
var ErrSealedSession = errors.New("stored session is encrypted and no key is configured")

// sessionCodec turns sessions into stored payloads. With an encrypter the
// JSON is sealed with AES-GCM and base64 encoded, so OAuth tokens never
// reach the store in the clear.
type sessionCodec struct {
	enc crypto.Encrypter
}

func (c sessionCodec) encode(session *domain.Session) ([]byte, error) {
	if session == nil {
		return nil, domain.ErrNoSession
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if c.enc == nil {
		return raw, nil
	}
	sealed, err := c.enc.Encrypt(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to seal session: %w", err)
	}
	out := make([]byte, 0, len(sealedPrefix)+base64.StdEncoding.EncodedLen(len(sealed)))
	out = append(out, sealedPrefix...)
	return base64.StdEncoding.AppendEncode(out, sealed), nil
}

func (c sessionCodec) decode(raw []byte) (*domain.Session, error) {
	if payload, ok := bytes.CutPrefix(raw, sealedPrefix); ok {
		if c.enc == nil {
			return nil, ErrSealedSession
		}
		sealed, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		if raw, err = c.enc.Decrypt(sealed); err != nil {
			return nil, fmt.Errorf("failed to open session: %w", err)
		}
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.UserID == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	return &session, nil
}
