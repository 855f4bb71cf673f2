package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/goal"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
)

const goalColumns = `id, user_id, title, horizon, category, progress, reason, created_at, updated_at`

// SQLGoalGateway implements goal.Gateway on SQLite or PostgreSQL.
type SQLGoalGateway struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLGoalGateway creates a goal gateway over conn.
func NewSQLGoalGateway(conn database.Connection) *SQLGoalGateway {
	return &SQLGoalGateway{conn: conn, now: time.Now}
}

var _ goal.Gateway = (*SQLGoalGateway)(nil)

type goalRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Horizon   string
	Category  string
	Progress  int64
	Reason    string
	CreatedAt timestamp
	UpdatedAt timestamp
}

// List returns the owner's goals in creation order. Stored progress values
// are returned as-is, even outside 0-100.
func (g *SQLGoalGateway) List(ctx context.Context, ownerID uuid.UUID) ([]goal.Goal, error) {
	query := g.conn.Driver().Rebind(`SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at, id`)

	exec := database.ExecutorFromContext(ctx, g.conn)
	rows, err := exec.Query(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]goal.Goal, 0)
	for rows.Next() {
		var row goalRow
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Title,
			&row.Horizon,
			&row.Category,
			&row.Progress,
			&row.Reason,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		gl, err := row.toGoal()
		if err != nil {
			return nil, err
		}
		goals = append(goals, gl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}
	return goals, nil
}

// Insert stores gl. The id is client generated.
func (g *SQLGoalGateway) Insert(ctx context.Context, gl goal.Goal) (goal.Goal, error) {
	d := g.conn.Driver()
	query := d.Rebind(`INSERT INTO goals (` + goalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	exec := database.ExecutorFromContext(ctx, g.conn)
	_, err := exec.Exec(ctx, query,
		gl.ID.String(),
		gl.UserID.String(),
		gl.Title,
		gl.Horizon.String(),
		gl.Category.String(),
		gl.Progress,
		gl.Reason,
		timestampArg(d, gl.CreatedAt),
		timestampArg(d, gl.UpdatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return goal.Goal{}, fmt.Errorf("goal %s: %w", gl.ID, ErrAlreadyExists)
		}
		return goal.Goal{}, fmt.Errorf("failed to insert goal: %w", err)
	}
	return gl, nil
}

// UpdateProgress sets the goal's progress.
func (g *SQLGoalGateway) UpdateProgress(ctx context.Context, ownerID, id uuid.UUID, progress int) error {
	d := g.conn.Driver()
	query := d.Rebind(`UPDATE goals SET progress = ?, updated_at = ? WHERE id = ? AND user_id = ?`)

	exec := database.ExecutorFromContext(ctx, g.conn)
	affected, err := exec.Exec(ctx, query, progress, timestampArg(d, g.now()), id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %s: %w", id, ErrGoalNotFound)
	}
	return nil
}

// Delete removes the goal. Deleting a missing row succeeds.
func (g *SQLGoalGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := g.conn.Driver().Rebind(`DELETE FROM goals WHERE id = ? AND user_id = ?`)
	exec := database.ExecutorFromContext(ctx, g.conn)
	if _, err := exec.Exec(ctx, query, id.String(), ownerID.String()); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (r goalRow) toGoal() (goal.Goal, error) {
	horizon, err := value_objects.ParseHorizon(r.Horizon)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("goal %s: %w", r.ID, err)
	}
	category, err := value_objects.ParseCategory(r.Category)
	if err != nil {
		return goal.Goal{}, fmt.Errorf("goal %s: %w", r.ID, err)
	}
	return goal.Goal{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Horizon:   horizon,
		Category:  category,
		Progress:  convert.Int64ToIntClamped(r.Progress),
		Reason:    r.Reason,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}, nil
}
