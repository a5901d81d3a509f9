// Package render formats projects, tasks and settings as themed text for the
// command line.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"setado/internal/models"
	"setado/internal/settings"
)

const stampLayout = "2006-01-02 15:04"

// Renderer turns store results into display text.
type Renderer struct {
	styles Styles
	now    func() time.Time
}

// New returns a Renderer using theme t.
func New(t Theme) *Renderer {
	return &Renderer{styles: NewStyles(t), now: time.Now}
}

// Projects lists projects one per line.
func (r *Renderer) Projects(projects []models.Project) string {
	if len(projects) == 0 {
		return r.styles.Muted.Render("No projects.") + "\n"
	}

	var b strings.Builder
	for _, p := range projects {
		b.WriteString(r.id(p.ID))
		b.WriteString("  ")
		b.WriteString(r.styles.Item.Render(p.Name))
		if p.Description != "" {
			b.WriteString("  ")
			b.WriteString(r.styles.Muted.Render(p.Description))
		}
		if p.IsArchived {
			b.WriteString("  ")
			b.WriteString(r.styles.Muted.Render("(archived)"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Tasks lists tasks in the given order.
func (r *Renderer) Tasks(tasks []models.Task) string {
	if len(tasks) == 0 {
		return r.styles.Muted.Render("No tasks.") + "\n"
	}

	var b strings.Builder
	for _, t := range tasks {
		r.writeTask(&b, t)
	}
	return b.String()
}

// TaskGroups shows open tasks first and completed ones under their own
// heading, as the project view does.
func (r *Renderer) TaskGroups(tasks []models.Task) string {
	open, completed := models.PartitionCompleted(tasks)

	var b strings.Builder
	b.WriteString(r.Tasks(open))
	if len(completed) > 0 {
		b.WriteByte('\n')
		b.WriteString(r.styles.Title.Render(fmt.Sprintf("Completed (%d)", len(completed))))
		b.WriteByte('\n')
		b.WriteString(r.Tasks(completed))
	}
	return b.String()
}

// History lists completed tasks with their completion time.
func (r *Renderer) History(tasks []models.Task) string {
	if len(tasks) == 0 {
		return r.styles.Muted.Render("Nothing completed yet.") + "\n"
	}

	var b strings.Builder
	for _, t := range tasks {
		stamp := "-"
		if t.CompletedAt != nil {
			stamp = t.CompletedAt.Format(stampLayout)
		}
		b.WriteString(r.styles.Muted.Render(stamp))
		b.WriteString("  ")
		b.WriteString(r.id(t.ID))
		b.WriteString("  ")
		b.WriteString(r.styles.Done.Render(t.Title))
		b.WriteByte('\n')
	}
	return b.String()
}

// Settings prints one key per line.
func (r *Renderer) Settings(s settings.Settings) string {
	frames := make([]string, len(s.FrameProjects))
	for i, id := range s.FrameProjects {
		frames[i] = strconv.FormatInt(id, 10)
	}

	rows := [][2]string{
		{"database_path", s.DatabasePath},
		{"backup_path", s.BackupPath},
		{"frame_count", strconv.Itoa(s.FrameCount)},
		{"default_priority", strconv.Itoa(s.DefaultPriority)},
		{"theme", s.Theme},
		{"frame_projects", "[" + strings.Join(frames, ", ") + "]"},
		{"backup_retention", strconv.Itoa(s.BackupRetention)},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(r.styles.Key.Render(fmt.Sprintf("%-17s", row[0])))
		b.WriteString(r.styles.Item.Render(row[1]))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Renderer) writeTask(b *strings.Builder, t models.Task) {
	box := "[ ]"
	title := r.styles.Item.Render(t.Title)
	if t.IsCompleted {
		box = r.styles.Done.Render("[x]")
		title = r.styles.Muted.Render(t.Title)
	}

	b.WriteString(box)
	b.WriteByte(' ')
	b.WriteString(r.id(t.ID))
	b.WriteString("  ")
	b.WriteString(r.styles.Priority.Render(fmt.Sprintf("P%d", t.Priority)))
	b.WriteString("  ")
	b.WriteString(title)
	if t.DueDate != nil {
		b.WriteString("  ")
		b.WriteString(r.due(t))
	}
	if t.IsDeleted {
		b.WriteString("  ")
		b.WriteString(r.styles.Muted.Render("(deleted)"))
	}
	b.WriteByte('\n')
}

func (r *Renderer) due(t models.Task) string {
	label := "due " + t.DueDate.Format(models.DateLayout)
	if !t.IsCompleted && t.DueDate.Before(startOfDay(r.now())) {
		return r.styles.Overdue.Render(label + " (overdue)")
	}
	return r.styles.Muted.Render(label)
}

func (r *Renderer) id(id int64) string {
	return r.styles.ID.Render("#" + strconv.FormatInt(id, 10))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
