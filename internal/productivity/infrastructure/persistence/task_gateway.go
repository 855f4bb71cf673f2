package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/grim/internal/shared/infrastructure/database"
)

const taskColumns = `id, user_id, title, description, priority, category, initiative,
	estimate, kanban_column, due_date, tags, created_at, updated_at`

// SQLTaskGateway implements task.Gateway on SQLite or PostgreSQL.
type SQLTaskGateway struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLTaskGateway creates a task gateway over conn.
func NewSQLTaskGateway(conn database.Connection) *SQLTaskGateway {
	return &SQLTaskGateway{conn: conn, now: time.Now}
}

var _ task.Gateway = (*SQLTaskGateway)(nil)

type taskRow struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Priority    string
	Category    string
	Initiative  string
	Estimate    string
	Column      string
	DueDate     string
	Tags        tagList
	CreatedAt   timestamp
	UpdatedAt   timestamp
}

func (g *SQLTaskGateway) driver() database.Driver {
	return g.conn.Driver()
}

// List returns the owner's tasks in creation order.
func (g *SQLTaskGateway) List(ctx context.Context, ownerID uuid.UUID) ([]task.Task, error) {
	query := g.driver().Rebind(`SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at, id`)

	exec := database.ExecutorFromContext(ctx, g.conn)
	rows, err := exec.Query(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(
			&row.ID,
			&row.UserID,
			&row.Title,
			&row.Description,
			&row.Priority,
			&row.Category,
			&row.Initiative,
			&row.Estimate,
			&row.Column,
			&row.DueDate,
			&row.Tags,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t, err := row.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Insert stores t. The id is client generated.
func (g *SQLTaskGateway) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	d := g.driver()
	tags, err := tagsArg(d, t.Tags)
	if err != nil {
		return task.Task{}, err
	}

	query := d.Rebind(`INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	exec := database.ExecutorFromContext(ctx, g.conn)
	_, err = exec.Exec(ctx, query,
		t.ID.String(),
		t.UserID.String(),
		t.Title,
		t.Description,
		t.Priority.String(),
		t.Category.String(),
		t.Initiative.String(),
		t.Estimate,
		t.Column.String(),
		t.DueDate,
		tags,
		timestampArg(d, t.CreatedAt),
		timestampArg(d, t.UpdatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return task.Task{}, fmt.Errorf("task %s: %w", t.ID, ErrAlreadyExists)
		}
		return task.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t.Clone(), nil
}

// Update writes only the fields set in patch.
func (g *SQLTaskGateway) Update(ctx context.Context, ownerID, id uuid.UUID, patch task.Patch) error {
	d := g.driver()
	patch = patch.Normalize()

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Priority != nil {
		set("priority", patch.Priority.String())
	}
	if patch.Category != nil {
		set("category", patch.Category.String())
	}
	if patch.Initiative != nil {
		set("initiative", patch.Initiative.String())
	}
	if patch.Estimate != nil {
		set("estimate", *patch.Estimate)
	}
	if patch.Column != nil {
		set("kanban_column", patch.Column.String())
	}
	if patch.DueDate != nil {
		set("due_date", *patch.DueDate)
	}
	if patch.Tags != nil {
		tags, err := tagsArg(d, *patch.Tags)
		if err != nil {
			return err
		}
		set("tags", tags)
	}
	if len(sets) == 0 {
		return task.ErrEmptyPatch
	}
	set("updated_at", timestampArg(d, g.now()))

	query := d.Rebind(`UPDATE tasks SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND user_id = ?`)
	args = append(args, id.String(), ownerID.String())

	exec := database.ExecutorFromContext(ctx, g.conn)
	affected, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	return nil
}

// Delete removes the task. Deleting a missing row succeeds.
func (g *SQLTaskGateway) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := g.driver().Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)
	exec := database.ExecutorFromContext(ctx, g.conn)
	if _, err := exec.Exec(ctx, query, id.String(), ownerID.String()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (r taskRow) toTask() (task.Task, error) {
	priority, err := value_objects.ParsePriority(r.Priority)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	category, err := value_objects.ParseCategory(r.Category)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	initiative, err := value_objects.ParseInitiative(r.Initiative)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}
	column, err := value_objects.ParseColumn(r.Column)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}

	return task.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Priority:    priority,
		Category:    category,
		Initiative:  initiative,
		Estimate:    r.Estimate,
		Column:      column,
		DueDate:     r.DueDate,
		Tags:        []string(r.Tags),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}, nil
}
