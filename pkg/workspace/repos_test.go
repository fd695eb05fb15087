package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRepo(t *testing.T, root, name, marker string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	if marker == ".git" {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, marker), 0755))
		return
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, marker), []byte("{}"), 0644))
}

func TestListRepos(t *testing.T) {
	ws := t.TempDir()
	makeRepo(t, ws, "payments", "package.json")
	makeRepo(t, ws, "orders", "docker-compose.yml")
	makeRepo(t, ws, "infra", ".git")

	// Not repositories: a bare directory, a dotted directory, a file.
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "scratch"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(ws, ".cache"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "README.md"), []byte("hi"), 0644))

	repos, err := ListRepos(ws)
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "infra", repos[0].Name)
	assert.Equal(t, "orders", repos[1].Name)
	assert.Equal(t, "payments", repos[2].Name)
	assert.Equal(t, filepath.Join(ws, "payments"), repos[2].Path)
}

func TestFindRepos(t *testing.T) {
	ws := t.TempDir()
	makeRepo(t, ws, "payments", "package.json")
	makeRepo(t, ws, "orders", "package.json")

	// Empty selection means everything.
	repos, err := FindRepos(ws, nil)
	require.NoError(t, err)
	assert.Len(t, repos, 2)

	// Explicit selection preserves caller order.
	repos, err = FindRepos(ws, []string{"payments", "orders"})
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "payments", repos[0].Name)

	_, err = FindRepos(ws, []string{"billing"})
	assert.ErrorContains(t, err, `repository "billing" not found`)
}

func TestReadManifest(t *testing.T) {
	ws := t.TempDir()
	dir := filepath.Join(ws, "payments")
	require.NoError(t, os.MkdirAll(dir, 0755))
	manifest := `{
		"name": "payments",
		"version": "2.1.0",
		"description": "Payments API",
		"scripts": {"dev": "next dev", "test": "jest"}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0644))

	m, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", m.Version)
	assert.Equal(t, "next dev", m.Scripts["dev"])

	_, err = ReadManifest(filepath.Join(ws, "missing"))
	assert.Error(t, err)
}
