package task

import (
	"context"

	"github.com/google/uuid"
)

// Gateway is the remote row store for tasks. Every call is scoped by owner.
type Gateway interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	Insert(ctx context.Context, t Task) (Task, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
