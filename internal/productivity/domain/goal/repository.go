package goal

import (
	"context"

	"github.com/google/uuid"
)

// Gateway is the remote row store for goals. Every call is scoped by owner.
type Gateway interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]Goal, error)
	Insert(ctx context.Context, g Goal) (Goal, error)
	UpdateProgress(ctx context.Context, ownerID, id uuid.UUID, progress int) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
