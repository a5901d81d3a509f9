package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"setado/internal/paths"
	"setado/internal/render"
	"setado/internal/settings"
	"setado/internal/storage/sqlite"
)

// app carries global flags and the lazily opened stores for one invocation.
type app struct {
	home    string
	json    bool
	verbose bool

	out    io.Writer
	errOut io.Writer

	logger *slog.Logger
	appDir string
	prefs  *settings.Store
	store  *sqlite.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "setado",
		Short: "Setado tracks tasks across personal projects",
		Long: `Setado keeps projects and their tasks in a local SQLite database.
Every change is followed by a timestamped backup of the database file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.home, "home", "", "application directory (default: $SETADO_HOME or the platform data dir)")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newProjectCmd(a))
	root.AddCommand(newTaskCmd(a))
	root.AddCommand(newSettingsCmd(a))
	return root
}

// setup resolves the application directory and loads settings.
func (a *app) setup() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	dir, err := paths.ResolveAppDir(a.home)
	if err != nil {
		return systemError(fmt.Errorf("resolve application directory: %w", err))
	}
	a.appDir = dir

	prefs, err := settings.Load(paths.SettingsFile(dir), settings.Defaults(dir), a.logger)
	if err != nil {
		return systemError(err)
	}
	a.prefs = prefs
	return nil
}

// openStore opens the database named in settings on first use.
func (a *app) openStore() (*sqlite.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	cfg := a.prefs.Get()
	store, err := sqlite.Open(cfg.DatabasePath, cfg.BackupPath, a.logger,
		sqlite.WithBackupRetention(cfg.BackupRetention))
	if err != nil {
		return nil, systemError(fmt.Errorf("open database: %w", err))
	}
	a.store = store
	return store, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *app) renderer() *render.Renderer {
	return render.New(render.ThemeFor(a.prefs.Get().Theme))
}

func (a *app) print(text string) {
	fmt.Fprint(a.out, text)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON with --json and text otherwise.
func (a *app) emit(v any, text func() string) error {
	if a.json {
		return a.printJSON(v)
	}
	a.print(text())
	return nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, userError("invalid %s id %q", what, raw)
	}
	return id, nil
}

// projectFilter reads the optional --project flag.
func projectFilter(cmd *cobra.Command, raw string) (*int64, error) {
	if !cmd.Flags().Changed("project") {
		return nil, nil
	}
	id, err := parseID(raw, "project")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// exactArgs tags cobra's argument count errors as user errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &exitErr{code: exitUserError, err: err}
		}
		return nil
	}
}

func minArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MinimumNArgs(n)(cmd, args); err != nil {
			return &exitErr{code: exitUserError, err: err}
		}
		return nil
	}
}
