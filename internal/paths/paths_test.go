package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAppDir_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only test")
	}

	t.Run("uses XDG_DATA_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
		got, err := DefaultAppDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/xdg-data/setado", got)
	})

	t.Run("falls back to ~/.local/share when XDG unset", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := DefaultAppDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".local", "share", "setado"), got)
	})

	t.Run("propagates home lookup errors", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "")
		orig := platformDir.homeDir
		platformDir.homeDir = func() (string, error) { return "", errors.New("no home") }
		t.Cleanup(func() { platformDir.homeDir = orig })

		_, err := DefaultAppDir()
		assert.Error(t, err)
	})
}

func TestResolveAppDir(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		envVal  string
		wantSub string
	}{
		{
			name:    "flag wins over env",
			flag:    "/explicit/home",
			envVal:  "/env/home",
			wantSub: "/explicit/home",
		},
		{
			name:    "env wins when flag empty",
			envVal:  "/env/home",
			wantSub: "/env/home",
		},
		{
			name:    "platform default when both empty",
			wantSub: "setado",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvHome, tt.envVal)
			got, err := ResolveAppDir(tt.flag)
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantSub)
		})
	}
}

func TestResolveAppDir_RelativeFlagIsAbsolute(t *testing.T) {
	got, err := ResolveAppDir("relative/home")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestLayout(t *testing.T) {
	app := filepath.Join("/", "opt", "setado")
	assert.Equal(t, filepath.Join(app, "config.json"), SettingsFile(app))
	assert.Equal(t, filepath.Join(app, "data", "todoui.db"), DatabaseFile(app))
	assert.Equal(t, filepath.Join(app, "data", "backups"), BackupDir(app))
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("SETADO_TEST_VALUE", "")
	assert.Equal(t, "fallback", EnvOrDefault("SETADO_TEST_VALUE", "fallback"))

	t.Setenv("SETADO_TEST_VALUE", "set")
	assert.Equal(t, "set", EnvOrDefault("SETADO_TEST_VALUE", "fallback"))
}
