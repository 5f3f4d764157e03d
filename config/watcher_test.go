package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupWatchedConfig points the config cascade at a temp home directory and
// returns the user config path with initial content written.
func setupWatchedConfig(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	Reset()
	t.Cleanup(Reset)

	path := DefaultPath()
	content := []byte("[database]\npath = \"initial.db\"\n")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func newTestWatcher(t *testing.T, path string) *ConfigWatcher {
	t.Helper()

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 50 * time.Millisecond
	t.Cleanup(func() { cw.Stop() })
	return cw
}

func waitForReload(t *testing.T, reloaded <-chan *Config, timeout time.Duration) *Config {
	t.Helper()
	select {
	case cfg := <-reloaded:
		return cfg
	case <-time.After(timeout):
		t.Fatal("no reload within timeout")
		return nil
	}
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	path := setupWatchedConfig(t)
	cw := newTestWatcher(t, path)

	reloaded := make(chan *Config, 1)
	cw.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	cw.Start()

	content := []byte("[database]\npath = \"changed.db\"\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg := waitForReload(t, reloaded, 3*time.Second)
	require.Equal(t, "changed.db", cfg.Database.Path)
}

func TestWatcher_Debounce(t *testing.T) {
	path := setupWatchedConfig(t)
	cw := newTestWatcher(t, path)

	reloads := make(chan *Config, 16)
	cw.OnReload(func(cfg *Config) error {
		reloads <- cfg
		return nil
	})
	cw.Start()

	// A burst of writes collapses into one reload
	for i := 0; i < 5; i++ {
		content := []byte("[database]\npath = \"burst.db\"\n")
		require.NoError(t, os.WriteFile(path, content, 0644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForReload(t, reloads, 3*time.Second)

	select {
	case <-reloads:
		t.Fatal("burst of writes triggered more than one reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_OwnWriteFlagClearsOnce(t *testing.T) {
	path := setupWatchedConfig(t)
	cw := newTestWatcher(t, path)

	require.False(t, cw.checkOwnWrite())

	cw.MarkOwnWrite()
	require.True(t, cw.checkOwnWrite(), "marked write should be recognized")
	require.False(t, cw.checkOwnWrite(), "flag should clear after one check")
}

func TestSaveTo_MarksGlobalWatcherOwnWrite(t *testing.T) {
	path := setupWatchedConfig(t)
	cw := newTestWatcher(t, path)

	SetGlobalWatcher(cw)
	t.Cleanup(func() { SetGlobalWatcher(nil) })

	cfg := &Config{}
	cfg.Database.Path = "saved.db"
	require.NoError(t, SaveTo(cfg, path))

	require.True(t, cw.checkOwnWrite(), "SaveTo should mark its write on the global watcher")
}

func TestIsBackupFile(t *testing.T) {
	require.True(t, isBackupFile(filepath.Join("x", "trellis.toml.back1")))
	require.True(t, isBackupFile("trellis.toml.back2"))
	require.True(t, isBackupFile("trellis.toml.back3"))
	require.False(t, isBackupFile("trellis.toml"))
	require.False(t, isBackupFile("trellis.toml.back4"))
}
