// Package command maps logical lifecycle commands (dev, start, build, test,
// ...) onto concrete argument vectors, taking a repository's docker
// classification and any configured override into account.
package command

import (
	"fmt"
	"strings"

	"github.com/crewhq/crew/pkg/docker"
	"github.com/crewhq/crew/pkg/workspace"
)

// Runner is the package manager used for plain-path invocations.
const Runner = "npm"

// composeBinary drives Compose-managed repositories. Teardown goes through
// its stop/down/rm subcommands, never raw signals against containers.
const composeBinary = "compose"

// Recognized logical commands. Anything else resolves through the
// passthrough rule (`npm run <command>`).
const (
	Dev       = "dev"
	Start     = "start"
	Build     = "build"
	Test      = "test"
	Lint      = "lint"
	Install   = "install"
	Clean     = "clean"
	Typecheck = "typecheck"
	Stop      = "stop"
	Down      = "down"
	Logs      = "logs"
	Serve     = "serve"
	Watch     = "watch"
)

// longRunning tags the commands whose process is expected to keep running
// after the orchestration call returns.
var longRunning = map[string]bool{
	Dev:   true,
	Start: true,
	Serve: true,
	Watch: true,
}

// IsLongRunning reports whether cmd uses the grace-period completion
// semantics instead of waiting for the child to exit.
func IsLongRunning(cmd string) bool {
	return longRunning[cmd]
}

// knownExecutables are override first-tokens taken verbatim. An override
// whose first token is none of these is treated as a script name and
// re-resolved through the plain path.
var knownExecutables = map[string]bool{
	"npm": true, "yarn": true, "pnpm": true, "bun": true,
	"npx": true, "node": true,
	"docker": true, "docker-compose": true, "compose": true,
	"make": true, "sh": true, "bash": true,
}

// Options are the run options accepted by the orchestrator.
type Options struct {
	Environment string // "dev", "prod", or anything else
	Parallel    bool
	Watch       bool // test only
	Fix         bool // lint only
	Volumes     bool // down only
	Force       bool // kill only
}

// Invocation is a resolved argument vector: program name followed by
// arguments. It is never mutated after creation.
type Invocation []string

// Program returns the executable name.
func (inv Invocation) Program() string { return inv[0] }

// Args returns the arguments after the program name.
func (inv Invocation) Args() []string { return inv[1:] }

func (inv Invocation) String() string { return strings.Join(inv, " ") }

// Selector asks the user to pick one of several labeled dev alternatives.
// Injected so tests and non-interactive callers can supply a deterministic
// implementation.
type Selector interface {
	Select(repo string, choices []workspace.Alternative) (int, error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(repo string, choices []workspace.Alternative) (int, error)

func (f SelectorFunc) Select(repo string, choices []workspace.Alternative) (int, error) {
	return f(repo, choices)
}

// Resolver turns logical commands into invocations.
type Resolver struct {
	selector Selector
}

// NewResolver builds a resolver. selector may be nil when no repository
// declares labeled dev alternatives.
func NewResolver(selector Selector) *Resolver {
	return &Resolver{selector: selector}
}

// Resolve produces the argument vector for cmd in a repository with the given
// classification. override, when non-nil, takes precedence over both the
// compose and plain paths.
func (r *Resolver) Resolve(repo, cmd string, opts Options, cls docker.Classification, override *workspace.Override) (Invocation, error) {
	if override != nil {
		return r.resolveOverride(repo, override, opts)
	}
	// Compose-managed wins over the hybrid classification: the hybrid flag
	// only steers termination later, the invocation itself is unchanged.
	if cls.ComposeManaged {
		return resolveCompose(cmd, opts, cls.ComposeFile), nil
	}
	return resolvePlain(cmd, opts), nil
}

func (r *Resolver) resolveOverride(repo string, ov *workspace.Override, opts Options) (Invocation, error) {
	switch ov.Kind {
	case workspace.OverrideSingle:
		return overrideTokens(strings.Fields(ov.Command), opts), nil
	case workspace.OverrideList:
		if len(ov.Args) == 0 {
			return nil, fmt.Errorf("empty command override")
		}
		return overrideTokens(ov.Args, opts), nil
	case workspace.OverrideAlternatives:
		if len(ov.Alternatives) == 0 {
			return nil, fmt.Errorf("empty alternatives override")
		}
		if len(ov.Alternatives) == 1 {
			return overrideTokens(strings.Fields(ov.Alternatives[0].Command), opts), nil
		}
		if r.selector == nil {
			return nil, fmt.Errorf("repository %s declares %d dev alternatives but no selector is available", repo, len(ov.Alternatives))
		}
		idx, err := r.selector.Select(repo, ov.Alternatives)
		if err != nil {
			return nil, fmt.Errorf("selecting dev alternative: %w", err)
		}
		if idx < 0 || idx >= len(ov.Alternatives) {
			return nil, fmt.Errorf("alternative index %d out of range", idx)
		}
		return overrideTokens(strings.Fields(ov.Alternatives[idx].Command), opts), nil
	default:
		return nil, fmt.Errorf("unrecognized override kind %d", ov.Kind)
	}
}

// overrideTokens takes an override vector verbatim when it starts with a
// known executable; otherwise the first token is a script name and goes back
// through the plain path.
func overrideTokens(tokens []string, opts Options) Invocation {
	if len(tokens) == 0 {
		return nil
	}
	if knownExecutables[tokens[0]] {
		return Invocation(tokens)
	}
	return resolvePlain(tokens[0], opts)
}

// resolveCompose implements the compose-path mapping table.
func resolveCompose(cmd string, opts Options, composeFile string) Invocation {
	inv := Invocation{composeBinary, "-f", composeFile}
	switch cmd {
	case Dev:
		return append(inv, "up", "--build")
	case Start:
		switch opts.Environment {
		case "dev":
			return append(inv, "up", "--build")
		case "prod":
			return append(inv, "up", "-d")
		default:
			return append(inv, "up")
		}
	case Build:
		return append(inv, "build")
	case Test:
		inv = append(inv, "run", "--rm", "app", Runner, "test")
		if opts.Watch {
			inv = append(inv, "--", "--watch")
		}
		return inv
	case Stop:
		return append(inv, "stop")
	case Down:
		inv = append(inv, "down")
		if opts.Volumes {
			inv = append(inv, "--volumes", "--remove-orphans")
		}
		return inv
	case Logs:
		return append(inv, "logs", "-f")
	default:
		return append(inv, "run", "--rm", "app", Runner, "run", cmd)
	}
}

// resolvePlain implements the package-manager mapping table.
func resolvePlain(cmd string, opts Options) Invocation {
	switch cmd {
	case Dev:
		return Invocation{Runner, "run", "dev"}
	case Start:
		if opts.Environment == "dev" {
			return Invocation{Runner, "run", "dev"}
		}
		return Invocation{Runner, "start"}
	case Build:
		if opts.Environment == "dev" {
			return Invocation{Runner, "run", "build:dev"}
		}
		return Invocation{Runner, "run", "build"}
	case Test:
		inv := Invocation{Runner, "test"}
		if opts.Watch {
			inv = append(inv, "--", "--watch")
		}
		return inv
	case Lint:
		inv := Invocation{Runner, "run", "lint"}
		if opts.Fix {
			inv = append(inv, "--", "--fix")
		}
		return inv
	case Install:
		return Invocation{Runner, "install"}
	case Clean:
		return Invocation{Runner, "run", "clean"}
	case Typecheck:
		return Invocation{Runner, "run", "typecheck"}
	default:
		return Invocation{Runner, "run", cmd}
	}
}
