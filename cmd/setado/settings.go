package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"setado/internal/settings"
)

const settingsKeys = "database_path, backup_path, frame_count, default_priority, theme, frame_projects, backup_retention"

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "Show or change settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			current := a.prefs.Get()
			return a.emit(current, func() string {
				return a.renderer().Settings(current) + fmt.Sprintf("\n(%s)\n", a.prefs.Path())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting",
		Long: `Set changes one setting and saves it immediately.

Keys: ` + settingsKeys + `
frame_projects takes a comma-separated list of project ids; 0 leaves a panel empty.
Path changes take effect on the next run.`,
		Example: `  setado settings set theme light
  setado settings set frame_projects 1,0,4`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := parseSetting(args[0], args[1])
			if err != nil {
				return err
			}
			updated, err := a.prefs.Update(u)
			if err != nil {
				return classify(err)
			}
			return a.emit(updated, func() string {
				return fmt.Sprintf("Set %s = %s\n", args[0], args[1])
			})
		},
	})

	return cmd
}

func parseSetting(key, value string) (settings.Update, error) {
	var u settings.Update

	atoi := func() (*int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, userError("%s must be an integer, got %q", key, value)
		}
		return &n, nil
	}

	var err error
	switch key {
	case "database_path":
		u.DatabasePath = &value
	case "backup_path":
		u.BackupPath = &value
	case "theme":
		u.Theme = &value
	case "frame_count":
		u.FrameCount, err = atoi()
	case "default_priority":
		u.DefaultPriority, err = atoi()
	case "backup_retention":
		u.BackupRetention, err = atoi()
	case "frame_projects":
		u.FrameProjects, err = parseIDList(value)
	default:
		return u, userError("unknown setting %q (keys: %s)", key, settingsKeys)
	}
	return u, err
}

func parseIDList(value string) ([]int64, error) {
	ids := []int64{}
	if strings.TrimSpace(value) == "" {
		return ids, nil
	}
	for _, part := range strings.Split(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, userError("frame_projects must be comma-separated ids, got %q", value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
