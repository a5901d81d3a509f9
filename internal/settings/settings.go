// Package settings persists application preferences: where the database and
// backups live, the panel layout and the display theme.
//
// A Store is created once by the process entry point and handed to whatever
// needs it. Reads return copies; every Update is written to disk before it
// returns.
package settings

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/spf13/viper"

	"setado/internal/paths"
)

// Keys as they appear in the settings file.
const (
	keyDatabasePath    = "database_path"
	keyBackupPath      = "backup_path"
	keyFrameCount      = "frame_count"
	keyDefaultPriority = "default_priority"
	keyTheme           = "theme"
	keyFrameProjects   = "frame_projects"
	keyBackupRetention = "backup_retention"
)

// Default values for a fresh installation.
const (
	DefaultFrameCount = 3
	DefaultTheme      = "dark"
)

// Themes lists the theme names accepted by Update.
var Themes = []string{"dark", "light"}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Settings is the full set of persisted preferences.
type Settings struct {
	DatabasePath    string `mapstructure:"database_path" json:"database_path"`
	BackupPath      string `mapstructure:"backup_path" json:"backup_path"`
	FrameCount      int    `mapstructure:"frame_count" json:"frame_count"`
	DefaultPriority int    `mapstructure:"default_priority" json:"default_priority"`
	Theme           string `mapstructure:"theme" json:"theme"`
	// FrameProjects remembers the project shown in each panel, in panel
	// order. Zero marks a panel without a selection.
	FrameProjects []int64 `mapstructure:"frame_projects" json:"frame_projects"`
	// BackupRetention caps the number of database backups kept. Zero keeps
	// all of them.
	BackupRetention int `mapstructure:"backup_retention" json:"backup_retention"`
}

// Defaults returns the settings of a fresh installation rooted at appDir.
func Defaults(appDir string) Settings {
	return Settings{
		DatabasePath:  paths.DatabaseFile(appDir),
		BackupPath:    paths.BackupDir(appDir),
		FrameCount:    DefaultFrameCount,
		Theme:         DefaultTheme,
		FrameProjects: []int64{},
	}
}

// Validate checks the values a store cannot start without.
func (s Settings) Validate() error {
	switch {
	case s.DatabasePath == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, keyDatabasePath)
	case s.BackupPath == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, keyBackupPath)
	case s.FrameCount < 1:
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalid, keyFrameCount)
	case s.Theme == "":
		return fmt.Errorf("%w: %s is empty", ErrInvalid, keyTheme)
	case s.BackupRetention < 0:
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, keyBackupRetention)
	}
	return nil
}

func (s Settings) clone() Settings {
	s.FrameProjects = slices.Clone(s.FrameProjects)
	if s.FrameProjects == nil {
		s.FrameProjects = []int64{}
	}
	return s
}

// Update names the fields to change. Nil members are left untouched; a
// non-nil empty FrameProjects clears the list.
type Update struct {
	DatabasePath    *string
	BackupPath      *string
	FrameCount      *int
	DefaultPriority *int
	Theme           *string
	FrameProjects   []int64
	BackupRetention *int
}

func (u Update) apply(s *Settings) {
	if u.DatabasePath != nil {
		s.DatabasePath = *u.DatabasePath
	}
	if u.BackupPath != nil {
		s.BackupPath = *u.BackupPath
	}
	if u.FrameCount != nil {
		s.FrameCount = *u.FrameCount
	}
	if u.DefaultPriority != nil {
		s.DefaultPriority = *u.DefaultPriority
	}
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.FrameProjects != nil {
		s.FrameProjects = slices.Clone(u.FrameProjects)
	}
	if u.BackupRetention != nil {
		s.BackupRetention = *u.BackupRetention
	}
}

// Store holds the loaded settings and the file they came from.
type Store struct {
	mu      sync.RWMutex
	path    string
	current Settings
	logger  *slog.Logger
}

// Load reads the settings file at path. A missing file is expected on first
// run: defaults are written and their directories created. A file that
// cannot be parsed or fails validation is reported at warn level and then
// replaced by defaults, so startup continues either way. Only failing to
// write the defaults is returned as an error.
func Load(path string, defaults Settings, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Store{path: path, logger: logger}

	loaded, err := readFile(path)
	switch {
	case err == nil:
		s.current = loaded
		logger.Debug("settings loaded", slog.String("path", path))
		return s, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("settings file not found, writing defaults", slog.String("path", path))
	default:
		logger.Warn("settings file unusable, restoring defaults", slog.String("path", path), slog.String("error", err.Error()))
	}

	s.current = defaults.clone()
	if err := ensureDirs(s.current); err != nil {
		return nil, fmt.Errorf("create data directories: %w", err)
	}
	if err := writeFile(path, s.current); err != nil {
		return nil, fmt.Errorf("write default settings: %w", err)
	}
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// Update applies u, writes the result and returns it. On any error the
// stored settings are left as they were.
func (s *Store) Update(u Update) (Settings, error) {
	if u.Theme != nil && !slices.Contains(Themes, *u.Theme) {
		return Settings{}, fmt.Errorf("%w: unknown theme %q", ErrInvalid, *u.Theme)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.clone()
	u.apply(&next)
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	if err := writeFile(s.path, next); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	s.current = next
	s.logger.Debug("settings saved", slog.String("path", s.path))
	return next.clone(), nil
}

func readFile(path string) (Settings, error) {
	if _, err := os.Stat(path); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	// Optional keys missing from older files take their defaults; only the
	// two paths are required.
	v.SetDefault(keyFrameCount, DefaultFrameCount)
	v.SetDefault(keyDefaultPriority, 0)
	v.SetDefault(keyTheme, DefaultTheme)
	v.SetDefault(keyFrameProjects, []int64{})
	v.SetDefault(keyBackupRetention, 0)
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var out Settings
	if err := v.UnmarshalExact(&out); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Settings{}, err
	}
	return out.clone(), nil
}

func writeFile(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	s = s.clone()
	v := viper.New()
	v.SetConfigType("json")
	v.Set(keyDatabasePath, s.DatabasePath)
	v.Set(keyBackupPath, s.BackupPath)
	v.Set(keyFrameCount, s.FrameCount)
	v.Set(keyDefaultPriority, s.DefaultPriority)
	v.Set(keyTheme, s.Theme)
	v.Set(keyFrameProjects, s.FrameProjects)
	v.Set(keyBackupRetention, s.BackupRetention)
	return v.WriteConfigAs(path)
}

func ensureDirs(s Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.DatabasePath), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(s.BackupPath, 0o755)
}
