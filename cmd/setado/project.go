package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(a),
		newProjectListCmd(a),
		newProjectArchiveCmd(a),
		newProjectRmCmd(a),
	)
	return cmd
}

func newProjectAddCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Create a project",
		Example: `  setado project add Home
  setado project add "Side project" --description "weekend hacking"`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			project, err := store.CreateProject(cmd.Context(), strings.Join(args, " "), description)
			if err != nil {
				return classify(fmt.Errorf("create project: %w", err))
			}
			return a.emit(project, func() string {
				return fmt.Sprintf("Created project #%d %s\n", project.ID, project.Name)
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "optional description")
	return cmd
}

func newProjectListCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			projects, err := store.ListProjects(cmd.Context(), all)
			if err != nil {
				return classify(fmt.Errorf("list projects: %w", err))
			}
			return a.emit(orEmpty(projects), func() string {
				return a.renderer().Projects(projects)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include archived projects")
	return cmd
}

func newProjectArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive ID",
		Short: "Archive a project",
		Long:  `Archive hides a project from listings and from due and history views. Its tasks are kept.`,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.ArchiveProject(cmd.Context(), id); err != nil {
				return classify(fmt.Errorf("archive project: %w", err))
			}
			return a.emit(map[string]any{"id": id, "status": "archived"}, func() string {
				return fmt.Sprintf("Archived project #%d\n", id)
			})
		},
	}
}

func newProjectRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a project and all of its tasks",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "project")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.DeleteProject(cmd.Context(), id); err != nil {
				return classify(fmt.Errorf("delete project: %w", err))
			}
			return a.emit(map[string]any{"id": id, "status": "deleted"}, func() string {
				return fmt.Sprintf("Deleted project #%d\n", id)
			})
		},
	}
}
