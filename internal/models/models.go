package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-date form accepted for due dates.
const DateLayout = "2006-01-02"

// Project groups tasks. Archived projects are hidden from default views.
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsArchived  bool       `json:"is_archived"`
	CreatedAt   time.Time  `json:"created_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// Task is a single item inside a project.
// Lower Priority values sort first.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsDeleted   bool       `json:"is_deleted"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// TaskUpdate lists the task fields that may be changed after creation.
// Nil members are left untouched. ClearDueDate removes the due date and
// takes precedence over DueDate.
type TaskUpdate struct {
	Title        *string
	Priority     *int
	DueDate      *time.Time
	ClearDueDate bool
	IsCompleted  *bool
	IsDeleted    *bool
}

// Empty reports whether the update would change nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Priority == nil && u.DueDate == nil && !u.ClearDueDate &&
		u.IsCompleted == nil && u.IsDeleted == nil
}

// Validation and lifecycle errors returned by the store.
var (
	ErrEmptyName       = errors.New("project name must not be empty")
	ErrEmptyTitle      = errors.New("task title must not be empty")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidDueDate  = errors.New("invalid due date")
	ErrClosed          = errors.New("store is closed")
)

// IsValidation reports whether err was caused by rejected input rather than
// a storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyName) || errors.Is(err, ErrEmptyTitle) || errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrInvalidDueDate)
}

// ParseDueDate accepts a calendar date, taken as local midnight, or a full
// RFC 3339 timestamp.
func ParseDueDate(v string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, v, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDueDate, v)
}

// PartitionCompleted splits tasks into open and completed ones, keeping the
// incoming order in both halves.
func PartitionCompleted(tasks []Task) (open, completed []Task) {
	for _, t := range tasks {
		if t.IsCompleted {
			completed = append(completed, t)
		} else {
			open = append(open, t)
		}
	}
	return open, completed
}
