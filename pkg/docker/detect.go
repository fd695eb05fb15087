// Package docker classifies how a repository runs its lifecycle commands:
// directly through a Compose manifest, through npm scripts that shell out to
// Compose, or neither. Classification is a read-only probe; any filesystem or
// parse error degrades to "not detected" so a broken manifest never blocks a
// command run.
package docker

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/crewhq/crew/pkg/workspace"
)

// composeFiles lists the manifest filenames that mark a repository as
// Compose-managed, in priority order. Existence alone decides; contents are
// never inspected.
var composeFiles = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
	"docker-compose.dev.yml",
	"docker-compose.development.yml",
}

// scriptCandidates maps a logical command to the npm script names it may
// correspond to, in the order they are tried.
var scriptCandidates = map[string][]string{
	"dev":   {"dev", "start:dev", "develop"},
	"start": {"start", "serve"},
	"build": {"build", "build:dev"},
	"test":  {"test"},
}

var composePattern = regexp.MustCompile(`\b(docker-compose|docker\s+compose|compose)\b`)

// Classification describes how a repository runs a given logical command.
// Exactly one classification is computed per repository per run and it is
// never mutated afterwards; the supervisor keeps a copy on each process
// record to pick a termination strategy later.
type Classification struct {
	// ComposeManaged is true when a Compose manifest exists in the repo root.
	ComposeManaged bool
	// ComposeFile is the manifest filename that matched, when ComposeManaged.
	ComposeFile string

	// NPMUsesDocker is true when the npm script behind the logical command
	// textually invokes Compose.
	NPMUsesDocker bool
	// DockerScript is the matching script's literal text.
	DockerScript string
	// Services holds service names extracted from the script, in script order.
	Services []string
	// ScriptComposeFile is the -f/--file value found in the script, if any.
	ScriptComposeFile string
}

// Classify inspects repoPath for the given logical command. It never returns
// an error: everything that goes wrong reads as a plain repository.
func Classify(repoPath, command string) Classification {
	var cls Classification

	for _, name := range composeFiles {
		if _, err := os.Stat(filepath.Join(repoPath, name)); err == nil {
			cls.ComposeManaged = true
			cls.ComposeFile = name
			break
		}
	}

	manifest, err := workspace.ReadManifest(repoPath)
	if err != nil || manifest == nil {
		return cls
	}

	for _, name := range candidatesFor(command) {
		script, ok := manifest.Scripts[name]
		if !ok {
			continue
		}
		if !composePattern.MatchString(script) {
			break
		}
		cls.NPMUsesDocker = true
		cls.DockerScript = script
		cls.ScriptComposeFile = extractComposeFile(script)
		cls.Services = extractServices(script)
		break
	}
	return cls
}

func candidatesFor(command string) []string {
	if names, ok := scriptCandidates[command]; ok {
		return names
	}
	return []string{command}
}

// extractComposeFile pulls the value of a -f/--file flag out of a script.
// Returns "" when the script relies on Compose's default file resolution.
func extractComposeFile(script string) string {
	tokens := strings.Fields(script)
	for i, tok := range tokens {
		switch {
		case tok == "-f" || tok == "--file":
			if i+1 < len(tokens) {
				return tokens[i+1]
			}
		case strings.HasPrefix(tok, "--file="):
			return strings.TrimPrefix(tok, "--file=")
		}
	}
	return ""
}

// shell tokens that end a compose invocation inside a larger script line.
func isShellSeparator(tok string) bool {
	switch tok {
	case "&&", "||", ";", "|":
		return true
	}
	return false
}

// extractServices returns the service names following the first `up` token.
// Known limitation: a literal "up" elsewhere in the script (for example in a
// path or message) makes this pick up unrelated tokens. The heuristic lives
// only here so it can be hardened without touching resolution or supervision.
func extractServices(script string) []string {
	tokens := strings.Fields(script)
	start := -1
	for i, tok := range tokens {
		if tok == "up" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var services []string
	for _, tok := range tokens[start:] {
		if isShellSeparator(tok) {
			break
		}
		if strings.HasPrefix(tok, "-") {
			continue
		}
		switch tok {
		case "up", "down", "build":
			continue
		}
		services = append(services, tok)
	}
	return services
}
