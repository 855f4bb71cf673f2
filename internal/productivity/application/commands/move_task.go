package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/grim/internal/productivity/domain/task"
	"github.com/felixgeelhaar/grim/internal/productivity/domain/value_objects"
)

// TaskMover covers the board gestures: column change, drag and drop, delete.
type TaskMover interface {
	MoveTask(ctx context.Context, id uuid.UUID, col value_objects.Column) error
	ReorderTask(ctx context.Context, m task.Move) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// MoveTaskCommand moves a task to another column.
type MoveTaskCommand struct {
	TaskID string
	Column string
}

// ReorderTaskCommand places a task at Index among the tasks of Column.
type ReorderTaskCommand struct {
	TaskID string
	Column string
	Index  int
}

// DeleteTaskCommand removes a task.
type DeleteTaskCommand struct {
	TaskID string
}

// BoardReader locates a task on the board. *store.Store satisfies it.
type BoardReader interface {
	Task(id uuid.UUID) (task.Task, bool)
	TasksInColumn(col value_objects.Column) []task.Task
}

// BoardHandler handles the move, reorder and delete commands.
type BoardHandler struct {
	engine TaskMover
	board  BoardReader
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(engine TaskMover, board BoardReader) *BoardHandler {
	return &BoardHandler{engine: engine, board: board}
}

// Move executes the MoveTaskCommand.
func (h *BoardHandler) Move(ctx context.Context, cmd MoveTaskCommand) error {
	id, err := parseID("task", cmd.TaskID)
	if err != nil {
		return err
	}
	col, err := value_objects.ParseColumn(cmd.Column)
	if err != nil {
		return err
	}
	return h.engine.MoveTask(ctx, id, col)
}

// Reorder executes the ReorderTaskCommand. The source position is read
// from the board.
func (h *BoardHandler) Reorder(ctx context.Context, cmd ReorderTaskCommand) error {
	id, err := parseID("task", cmd.TaskID)
	if err != nil {
		return err
	}
	dest, err := value_objects.ParseColumn(cmd.Column)
	if err != nil {
		return err
	}

	m := task.Move{TaskID: id, DestinationColumn: dest, DestinationIndex: cmd.Index, SourceIndex: -1}
	if t, ok := h.board.Task(id); ok {
		m.SourceColumn = t.Column
		m.SourceIndex = task.IndexOf(h.board.TasksInColumn(t.Column), id)
	}
	return h.engine.ReorderTask(ctx, m)
}

// Delete executes the DeleteTaskCommand.
func (h *BoardHandler) Delete(ctx context.Context, cmd DeleteTaskCommand) error {
	id, err := parseID("task", cmd.TaskID)
	if err != nil {
		return err
	}
	return h.engine.DeleteTask(ctx, id)
}
