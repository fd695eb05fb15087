package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigDir, ConfigFile)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), LogSubdir), cfg.LogDir)
	assert.Empty(t, cfg.WorkspacePath)
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{
		WorkspacePath: "/workspace/dev",
		LogDir:        "/tmp/crew-logs",
		User:          UserInfo{Name: "Sam", Email: "sam@example.com", Team: "platform"},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.WorkspacePath, loaded.WorkspacePath)
	assert.Equal(t, cfg.User, loaded.User)
}

func TestConfig_CommandOverrideShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"workspace_path": "/workspace/dev",
		"repositories": {
			"payments": {
				"commands": {
					"dev": "yarn dev --port 4001",
					"test": ["npm", "run", "test:ci"],
					"start": [
						{"label": "local", "kind": "npm", "command": "npm run start:local"},
						{"label": "docker", "kind": "compose", "command": "docker compose up"}
					]
				}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	ov, err := cfg.CommandOverride("payments", "dev")
	require.NoError(t, err)
	require.NotNil(t, ov)
	assert.Equal(t, OverrideSingle, ov.Kind)
	assert.Equal(t, "yarn dev --port 4001", ov.Command)

	ov, err = cfg.CommandOverride("payments", "test")
	require.NoError(t, err)
	assert.Equal(t, OverrideList, ov.Kind)
	assert.Equal(t, []string{"npm", "run", "test:ci"}, ov.Args)

	ov, err = cfg.CommandOverride("payments", "start")
	require.NoError(t, err)
	assert.Equal(t, OverrideAlternatives, ov.Kind)
	require.Len(t, ov.Alternatives, 2)
	assert.Equal(t, "docker", ov.Alternatives[1].Label)

	// No override configured for this pair.
	ov, err = cfg.CommandOverride("payments", "lint")
	require.NoError(t, err)
	assert.Nil(t, ov)

	ov, err = cfg.CommandOverride("orders", "dev")
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestConfig_CommandOverrideBadShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"repositories": {"payments": {"commands": {"dev": {"nested": true}}}}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = cfg.CommandOverride("payments", "dev")
	assert.Error(t, err)
}
