package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"setado/internal/models"
)

const projectColumns = `id, name, description, COALESCE(is_archived, 0), created_at, archived_at`

// CreateProject persists a new, unarchived project.
func (s *Store) CreateProject(ctx context.Context, name, description string) (models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Project{}, models.ErrEmptyName
	}

	var project models.Project
	err := s.mutate(ctx, "create project", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO projects(name, description, is_archived, created_at) VALUES(?, ?, 0, ?)`,
			name, nullString(strings.TrimSpace(description)), formatTime(s.now()))
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("project id: %w", err)
		}
		project, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// ListProjects returns projects ordered by name. Archived projects are left
// out unless includeArchived is set.
func (s *Store) ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE COALESCE(is_archived, 0) = 0`
	}
	query += ` ORDER BY name, id`

	var projects []models.Project
	err := s.read(func(q querier) error {
		rows, err := q.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanProject(rows)
			if err != nil {
				return err
			}
			projects = append(projects, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// ArchiveProject hides a project from default views. The first archive time
// is kept; unknown ids are ignored.
func (s *Store) ArchiveProject(ctx context.Context, id int64) error {
	return s.mutate(ctx, "archive project", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `UPDATE projects SET is_archived = 1, archived_at = COALESCE(archived_at, ?) WHERE id = ?`,
			formatTime(s.now()), id)
		if err != nil {
			return fmt.Errorf("archive project: %w", err)
		}
		return nil
	})
}

// DeleteProject removes a project along with all of its tasks, soft-deleted
// ones included. Unknown ids are ignored.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	return s.mutate(ctx, "delete project", func(tx *sql.Tx) error {
		// Explicit so that files created without foreign key enforcement
		// lose their tasks too.
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
}

func getProject(ctx context.Context, q querier, id int64) (models.Project, error) {
	row := q.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return models.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var (
		p           models.Project
		description sql.NullString
		archived    int64
		createdAt   string
		archivedAt  sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &archived, &createdAt, &archivedAt); err != nil {
		return models.Project{}, fmt.Errorf("scan project: %w", err)
	}

	p.Description = description.String
	p.IsArchived = archived != 0

	created, err := parseTime(createdAt)
	if err != nil {
		return models.Project{}, fmt.Errorf("project %d created_at: %w", p.ID, err)
	}
	p.CreatedAt = created

	if p.ArchivedAt, err = parseNullTime(archivedAt); err != nil {
		return models.Project{}, fmt.Errorf("project %d archived_at: %w", p.ID, err)
	}
	return p, nil
}
