package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLUGINS_PATH", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	require.Equal(t, "plugins.json", cfg.PluginsPath)
	require.Equal(t, "script_state.json", cfg.ScriptStatePath)
	require.Equal(t, "perl_reference.txt", cfg.APIReferencePath)
	require.Equal(t, "", cfg.DatabaseURL)
	require.Equal(t, 8, cfg.WorkerCount)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PLUGINS_PATH", "/tmp/team_plugins.json")
	t.Setenv("WORKER_COUNT", "2")

	cfg := Load()
	require.Equal(t, "/tmp/team_plugins.json", cfg.PluginsPath)
	require.Equal(t, 2, cfg.WorkerCount)
}

// TestLoadBadWorkerCount verifies a non-numeric count falls back rather
// than failing startup.
func TestLoadBadWorkerCount(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	require.Equal(t, 8, Load().WorkerCount)
}
