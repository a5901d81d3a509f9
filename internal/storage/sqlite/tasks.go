package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"setado/internal/models"
)

const taskColumns = `t.id, t.project_id, t.title, COALESCE(t.priority, 0), t.due_date,
	COALESCE(t.is_completed, 0), COALESCE(t.is_deleted, 0), t.created_at, t.completed_at, t.deleted_at`

// Assignments shared by CompleteTask/DeleteTask and UpdateTask. They keep
// the first completion and deletion timestamps when repeated.
const (
	setCompleted = `is_completed = 1, completed_at = CASE WHEN COALESCE(is_completed, 0) = 1 AND completed_at IS NOT NULL THEN completed_at ELSE ? END`
	setDeleted   = `is_deleted = 1, deleted_at = COALESCE(deleted_at, ?)`
)

// CreateTask inserts a new task into an existing project.
func (s *Store) CreateTask(ctx context.Context, projectID int64, title string, priority int, due *time.Time) (models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, models.ErrEmptyTitle
	}

	var task models.Task
	err := s.mutate(ctx, "create task", func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %d", models.ErrProjectNotFound, projectID)
		}
		if err != nil {
			return fmt.Errorf("check project: %w", err)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO tasks(project_id, title, priority, due_date, is_completed, is_deleted, created_at)
			VALUES(?, ?, ?, ?, 0, 0, ?)`, projectID, title, priority, nullTime(due), formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		task, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ListTasks returns the tasks of a project ordered by priority and then
// creation time. Soft-deleted tasks are left out unless includeDeleted is set.
func (s *Store) ListTasks(ctx context.Context, projectID int64, includeDeleted bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = ?`
	if !includeDeleted {
		query += ` AND COALESCE(t.is_deleted, 0) = 0`
	}
	query += ` ORDER BY COALESCE(t.priority, 0), t.created_at, t.id`

	return s.listTasks(ctx, "list tasks", query, projectID)
}

// ListTasksDue returns open tasks that have a due date, nearest first. With a
// nil projectID it spans every project that is not archived.
func (s *Store) ListTasksDue(ctx context.Context, projectID *int64) ([]models.Task, error) {
	const open = ` t.due_date IS NOT NULL AND COALESCE(t.is_completed, 0) = 0 AND COALESCE(t.is_deleted, 0) = 0`
	const order = ` ORDER BY t.due_date, t.id`

	if projectID == nil {
		return s.listTasks(ctx, "list due tasks", `SELECT `+taskColumns+` FROM tasks t
			JOIN projects p ON t.project_id = p.id
			WHERE`+open+` AND COALESCE(p.is_archived, 0) = 0`+order)
	}
	return s.listTasks(ctx, "list due tasks", `SELECT `+taskColumns+` FROM tasks t
		WHERE t.project_id = ? AND`+open+order, *projectID)
}

// ListTasksCompleted returns completed tasks that are not deleted, most
// recently completed first. With a nil projectID it spans every project that
// is not archived.
func (s *Store) ListTasksCompleted(ctx context.Context, projectID *int64) ([]models.Task, error) {
	const done = ` COALESCE(t.is_completed, 0) = 1 AND COALESCE(t.is_deleted, 0) = 0`
	const order = ` ORDER BY t.completed_at DESC, t.id DESC`

	if projectID == nil {
		return s.listTasks(ctx, "list completed tasks", `SELECT `+taskColumns+` FROM tasks t
			JOIN projects p ON t.project_id = p.id
			WHERE`+done+` AND COALESCE(p.is_archived, 0) = 0`+order)
	}
	return s.listTasks(ctx, "list completed tasks", `SELECT `+taskColumns+` FROM tasks t
		WHERE t.project_id = ? AND`+done+order, *projectID)
}

// CompleteTask marks a task as completed. Unknown ids are ignored.
func (s *Store) CompleteTask(ctx context.Context, id int64) error {
	return s.exec(ctx, "complete task", `UPDATE tasks SET `+setCompleted+` WHERE id = ?`, formatTime(s.now()), id)
}

// UncompleteTask reopens a task and clears its completion time.
func (s *Store) UncompleteTask(ctx context.Context, id int64) error {
	return s.exec(ctx, "uncomplete task", `UPDATE tasks SET is_completed = 0, completed_at = NULL WHERE id = ?`, id)
}

// DeleteTask soft-deletes a task. The row stays in place and repeated calls
// keep the original deletion time.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete task", `UPDATE tasks SET `+setDeleted+` WHERE id = ?`, formatTime(s.now()), id)
}

// UpdateTask changes only the fields present in u. Completion and deletion
// changes keep completed_at and deleted_at consistent with their flags.
func (s *Store) UpdateTask(ctx context.Context, id int64, u models.TaskUpdate) error {
	if u.Empty() {
		return nil
	}

	var (
		sets []string
		args []any
		now  = formatTime(s.now())
	)

	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return models.ErrEmptyTitle
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *u.Priority)
	}
	switch {
	case u.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	case u.DueDate != nil:
		sets = append(sets, "due_date = ?")
		args = append(args, formatTime(*u.DueDate))
	}
	if u.IsCompleted != nil {
		if *u.IsCompleted {
			sets = append(sets, setCompleted)
			args = append(args, now)
		} else {
			sets = append(sets, "is_completed = 0, completed_at = NULL")
		}
	}
	if u.IsDeleted != nil {
		if *u.IsDeleted {
			sets = append(sets, setDeleted)
			args = append(args, now)
		} else {
			sets = append(sets, "is_deleted = 0")
		}
	}

	args = append(args, id)
	return s.exec(ctx, "update task", `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
}

// exec runs a single-statement mutation.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) error {
	return s.mutate(ctx, op, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

func (s *Store) listTasks(ctx context.Context, op, query string, args ...any) ([]models.Task, error) {
	var tasks []models.Task
	err := s.read(func(q querier) error {
		rows, err := q.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func getTask(ctx context.Context, q querier, id int64) (models.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t                               models.Task
		completed, deleted              int64
		createdAt                       string
		dueDate, completedAt, deletedAt sql.NullString
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Priority, &dueDate,
		&completed, &deleted, &createdAt, &completedAt, &deletedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}

	t.IsCompleted = completed != 0
	t.IsDeleted = deleted != 0

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("task %d created_at: %w", t.ID, err)
	}
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return models.Task{}, fmt.Errorf("task %d due_date: %w", t.ID, err)
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %d completed_at: %w", t.ID, err)
	}
	if t.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return models.Task{}, fmt.Errorf("task %d deleted_at: %w", t.ID, err)
	}
	return t, nil
}
