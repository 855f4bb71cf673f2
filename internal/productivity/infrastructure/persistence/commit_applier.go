package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/outbox"
)

// CommitApplier replays queued board and goal events against the gateways.
type CommitApplier struct {
	tasks  task.Gateway
	goals  goal.Gateway
	logger *slog.Logger
}

// NewCommitApplier creates an applier over the given gateways.
func NewCommitApplier(tasks task.Gateway, goals goal.Gateway, logger *slog.Logger) *CommitApplier {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommitApplier{tasks: tasks, goals: goals, logger: logger}
}

var _ outbox.Applier = (*CommitApplier)(nil)

// Apply performs the remote write described by msg. A retried insert that
// finds its row already stored counts as applied. Errors that another
// attempt cannot fix are marked permanent.
func (a *CommitApplier) Apply(ctx context.Context, msg *outbox.Message) error {
	owner := msg.OwnerID
	id := msg.AggregateID

	switch msg.RoutingKey {
	case task.RoutingKeyCreated:
		var ev task.TaskCreated
		if err := msg.Decode(&ev); err != nil {
			return outbox.Permanent(fmt.Errorf("failed to decode task insert: %w", err))
		}
		ev.Task.UserID = owner
		_, err := a.tasks.Insert(ctx, ev.Task)
		return a.classify(msg, err)

	case task.RoutingKeyUpdated:
		var ev task.TaskUpdated
		if err := msg.Decode(&ev); err != nil {
			return outbox.Permanent(fmt.Errorf("failed to decode task update: %w", err))
		}
		return a.classify(msg, a.tasks.Update(ctx, owner, id, ev.Patch))

	case task.RoutingKeyDeleted:
		return a.classify(msg, a.tasks.Delete(ctx, owner, id))

	case goal.RoutingKeyCreated:
		var ev goal.GoalCreated
		if err := msg.Decode(&ev); err != nil {
			return outbox.Permanent(fmt.Errorf("failed to decode goal insert: %w", err))
		}
		ev.Goal.UserID = owner
		_, err := a.goals.Insert(ctx, ev.Goal)
		return a.classify(msg, err)

	case goal.RoutingKeyProgressUpdated:
		var ev goal.GoalProgressUpdated
		if err := msg.Decode(&ev); err != nil {
			return outbox.Permanent(fmt.Errorf("failed to decode goal progress: %w", err))
		}
		return a.classify(msg, a.goals.UpdateProgress(ctx, owner, id, ev.Progress))

	case goal.RoutingKeyDeleted:
		return a.classify(msg, a.goals.Delete(ctx, owner, id))
	}

	return outbox.Permanent(fmt.Errorf("no applier for routing key %q", msg.RoutingKey))
}

func (a *CommitApplier) classify(msg *outbox.Message, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists):
		a.logger.Debug("insert already applied", "aggregate_id", msg.AggregateID)
		return nil
	case errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrGoalNotFound),
		errors.Is(err, task.ErrEmptyPatch):
		return outbox.Permanent(err)
	}
	return err
}
