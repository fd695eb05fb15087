package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestClassify_ComposeManifestPriority(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"compose.yml":        "services: {}",
		"docker-compose.yml": "services: {}",
	})

	cls := Classify(dir, "dev")
	assert.True(t, cls.ComposeManaged)
	// docker-compose.yml outranks compose.yml.
	assert.Equal(t, "docker-compose.yml", cls.ComposeFile)
}

func TestClassify_NoIndicators(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"dev": "next dev"}}`,
	})

	cls := Classify(dir, "dev")
	assert.False(t, cls.ComposeManaged)
	assert.False(t, cls.NPMUsesDocker)
}

func TestClassify_HybridScript(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"dev": "docker compose -f docker-compose.dev.yml up --build web db"}}`,
	})

	cls := Classify(dir, "dev")
	assert.False(t, cls.ComposeManaged)
	assert.True(t, cls.NPMUsesDocker)
	assert.Equal(t, "docker-compose.dev.yml", cls.ScriptComposeFile)
	assert.Equal(t, []string{"web", "db"}, cls.Services)
}

func TestClassify_HybridScriptCandidateOrder(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"start:dev": "docker-compose up"}}`,
	})

	cls := Classify(dir, "dev")
	assert.True(t, cls.NPMUsesDocker)
	assert.Empty(t, cls.Services)
	assert.Empty(t, cls.ScriptComposeFile)
}

func TestClassify_ServicesStopAtShellSeparator(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"dev": "docker compose up -d web && npm run watch"}}`,
	})

	cls := Classify(dir, "dev")
	assert.Equal(t, []string{"web"}, cls.Services)
}

func TestClassify_MalformedManifestDegrades(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{not json`,
	})

	cls := Classify(dir, "dev")
	assert.False(t, cls.ComposeManaged)
	assert.False(t, cls.NPMUsesDocker)
}

func TestClassify_NonDockerScriptShortCircuits(t *testing.T) {
	// The first existing candidate decides; a plain "dev" script means no
	// hybrid detection even if a later candidate would match.
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"dev": "vite", "start:dev": "docker compose up"}}`,
	})

	cls := Classify(dir, "dev")
	assert.False(t, cls.NPMUsesDocker)
}

func TestClassify_FileEqualsFlag(t *testing.T) {
	dir := writeRepo(t, map[string]string{
		"package.json": `{"scripts": {"test": "docker compose --file=ci.yml up sut"}}`,
	})

	cls := Classify(dir, "test")
	assert.True(t, cls.NPMUsesDocker)
	assert.Equal(t, "ci.yml", cls.ScriptComposeFile)
	assert.Equal(t, []string{"sut"}, cls.Services)
}
