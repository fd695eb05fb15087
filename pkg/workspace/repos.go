package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Repo represents a single repository in the workspace.
type Repo struct {
	Name string // Directory name (e.g. "payments")
	Path string // Full path to the repository
}

// markers that qualify a directory as a repository.
var repoMarkers = []string{".git", "package.json", "docker-compose.yml", "compose.yml"}

// ListRepos enumerates the immediate subdirectories of workspacePath that look
// like repositories, sorted by name for consistent ordering.
func ListRepos(workspacePath string) ([]Repo, error) {
	entries, err := os.ReadDir(workspacePath)
	if err != nil {
		return nil, fmt.Errorf("reading workspace: %w", err)
	}

	var repos []Repo
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		path := filepath.Join(workspacePath, entry.Name())
		if !looksLikeRepo(path) {
			continue
		}
		repos = append(repos, Repo{Name: entry.Name(), Path: path})
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}

// FindRepos resolves the given names against the workspace. An empty name list
// returns every repository. Unknown names are an error so typos don't silently
// run against nothing.
func FindRepos(workspacePath string, names []string) ([]Repo, error) {
	all, err := ListRepos(workspacePath)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Repo, len(all))
	for _, r := range all {
		byName[r.Name] = r
	}

	repos := make([]Repo, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("repository %q not found in workspace %s", name, workspacePath)
		}
		repos = append(repos, r)
	}
	return repos, nil
}

func looksLikeRepo(path string) bool {
	for _, marker := range repoMarkers {
		if _, err := os.Stat(filepath.Join(path, marker)); err == nil {
			return true
		}
	}
	return false
}

// PackageManifest is the subset of package.json crew reads: scripts for docker
// detection, description/version for listing.
type PackageManifest struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Scripts     map[string]string `json:"scripts"`
}

// ReadManifest loads a repository's package.json. Callers that only need a
// best-effort read (the docker detector, `crew list`) treat errors as absence.
func ReadManifest(repoPath string) (*PackageManifest, error) {
	data, err := os.ReadFile(filepath.Join(repoPath, "package.json"))
	if err != nil {
		return nil, err
	}
	var m PackageManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return &m, nil
}
