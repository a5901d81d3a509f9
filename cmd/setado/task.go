package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"setado/internal/models"
	"setado/internal/storage/sqlite"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskDueCmd(a),
		newTaskHistoryCmd(a),
		newTaskEditCmd(a),
		newTaskStateCmd(a, "done", "Mark a task as completed", "completed", (*sqlite.Store).CompleteTask),
		newTaskStateCmd(a, "undone", "Reopen a completed task", "reopened", (*sqlite.Store).UncompleteTask),
		newTaskStateCmd(a, "rm", "Delete a task", "deleted", (*sqlite.Store).DeleteTask),
	)
	return cmd
}

func parseDue(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	due, err := models.ParseDueDate(raw)
	if err != nil {
		return nil, classify(err)
	}
	return &due, nil
}

func newTaskAddCmd(a *app) *cobra.Command {
	var (
		priority int
		due      string
	)

	cmd := &cobra.Command{
		Use:   "add PROJECT_ID TITLE...",
		Short: "Add a task to a project",
		Example: `  setado task add 1 Pay rent --due 2024-03-01
  setado task add 1 "Buy milk" --priority -1`,
		Args: minArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			dueDate, err := parseDue(due)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("priority") {
				priority = a.prefs.Get().DefaultPriority
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			task, err := store.CreateTask(cmd.Context(), projectID, strings.Join(args[1:], " "), priority, dueDate)
			if err != nil {
				return classify(fmt.Errorf("create task: %w", err))
			}
			return a.emit(task, func() string {
				return fmt.Sprintf("Created task #%d %s\n", task.ID, task.Title)
			})
		},
	}

	cmd.Flags().IntVar(&priority, "priority", 0, "priority, lower sorts first (default: settings default_priority)")
	cmd.Flags().StringVar(&due, "due", "", "due date as YYYY-MM-DD")
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var deleted bool

	cmd := &cobra.Command{
		Use:   "list PROJECT_ID",
		Short: "List the tasks of a project",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			tasks, err := store.ListTasks(cmd.Context(), projectID, deleted)
			if err != nil {
				return classify(fmt.Errorf("list tasks: %w", err))
			}
			return a.emit(orEmpty(tasks), func() string {
				return a.renderer().TaskGroups(tasks)
			})
		},
	}

	cmd.Flags().BoolVar(&deleted, "deleted", false, "include deleted tasks")
	return cmd
}

func newTaskDueCmd(a *app) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List open tasks with a due date, nearest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := projectFilter(cmd, project)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			tasks, err := store.ListTasksDue(cmd.Context(), projectID)
			if err != nil {
				return classify(fmt.Errorf("list due tasks: %w", err))
			}
			return a.emit(orEmpty(tasks), func() string {
				return a.renderer().Tasks(tasks)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "limit to one project id")
	return cmd
}

func newTaskHistoryCmd(a *app) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed tasks, most recent first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := projectFilter(cmd, project)
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			tasks, err := store.ListTasksCompleted(cmd.Context(), projectID)
			if err != nil {
				return classify(fmt.Errorf("list completed tasks: %w", err))
			}
			return a.emit(orEmpty(tasks), func() string {
				return a.renderer().History(tasks)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "limit to one project id")
	return cmd
}

func newTaskEditCmd(a *app) *cobra.Command {
	var (
		title    string
		priority int
		due      string
		clearDue bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title, priority or due date",
		Example: `  setado task edit 3 --title "Pay March rent"
  setado task edit 3 --clear-due`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			var u models.TaskUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("priority") {
				u.Priority = &priority
			}
			if flags.Changed("due") {
				if u.DueDate, err = parseDue(due); err != nil {
					return err
				}
			}
			u.ClearDueDate = clearDue
			if u.Empty() {
				return userError("nothing to change; pass --title, --priority, --due or --clear-due")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.UpdateTask(cmd.Context(), id, u); err != nil {
				return classify(fmt.Errorf("update task: %w", err))
			}
			return a.emit(map[string]any{"id": id, "status": "updated"}, func() string {
				return fmt.Sprintf("Updated task #%d\n", id)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.IntVar(&priority, "priority", 0, "new priority")
	f.StringVar(&due, "due", "", "new due date as YYYY-MM-DD")
	f.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

// newTaskStateCmd builds the single-id commands that flip a task flag.
func newTaskStateCmd(a *app, use, short, status string, op func(*sqlite.Store, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := op(store, cmd.Context(), id); err != nil {
				return classify(fmt.Errorf("%s task: %w", use, err))
			}
			return a.emit(map[string]any{"id": id, "status": status}, func() string {
				return fmt.Sprintf("Task #%d %s\n", id, status)
			})
		},
	}
}
