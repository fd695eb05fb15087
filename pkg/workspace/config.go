package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Constants for crew's on-disk layout.
const (
	ConfigDir  = ".crew"
	ConfigFile = "config.json"
	LogSubdir  = "logs"
)

// Config is the persisted CLI configuration. It is loaded once at startup and
// passed explicitly into the orchestrator; nothing reads it through a global.
type Config struct {
	WorkspacePath string                `json:"workspace_path"`
	LogDir        string                `json:"log_dir"`
	User          UserInfo              `json:"user"`
	Repositories  map[string]RepoConfig `json:"repositories,omitempty"`
}

// UserInfo carries onboarding metadata about the developer.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team,omitempty"`
}

// RepoConfig holds per-repository settings. Command overrides are kept as raw
// JSON here and decoded into the tagged Override variant on access, so the
// loosely shaped config format is normalized at this one boundary.
type RepoConfig struct {
	Commands map[string]json.RawMessage `json:"commands,omitempty"`
}

// DefaultConfigPath returns ~/.crew/config.json.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ConfigDir, ConfigFile), nil
}

// LoadConfig reads the configuration at path. A missing file yields a zero
// config with defaults applied rather than an error, so first runs work.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults(path)
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults(path string) {
	if c.LogDir == "" {
		c.LogDir = filepath.Join(filepath.Dir(path), LogSubdir)
	}
}

// CommandOverride returns the decoded override for (repo, command), or nil
// when none is configured.
func (c *Config) CommandOverride(repo, command string) (*Override, error) {
	rc, ok := c.Repositories[repo]
	if !ok {
		return nil, nil
	}
	raw, ok := rc.Commands[command]
	if !ok {
		return nil, nil
	}
	return decodeOverride(raw)
}

// OverrideKind discriminates the three accepted override shapes.
type OverrideKind int

const (
	// OverrideSingle is a whitespace-separated command string.
	OverrideSingle OverrideKind = iota
	// OverrideList is an explicit argument vector.
	OverrideList
	// OverrideAlternatives is a list of labeled dev invocations; the user
	// picks exactly one per run.
	OverrideAlternatives
)

// Alternative is one labeled choice in an OverrideAlternatives override.
type Alternative struct {
	Label   string `json:"label"`
	Kind    string `json:"kind,omitempty"`
	Command string `json:"command"`
}

// Override is the normalized form of a per-repository command override.
type Override struct {
	Kind         OverrideKind
	Command      string
	Args         []string
	Alternatives []Alternative
}

func decodeOverride(raw json.RawMessage) (*Override, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &Override{Kind: OverrideSingle, Command: s}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return &Override{Kind: OverrideList, Args: list}, nil
	}
	var alts []Alternative
	if err := json.Unmarshal(raw, &alts); err == nil {
		return &Override{Kind: OverrideAlternatives, Alternatives: alts}, nil
	}
	return nil, fmt.Errorf("unrecognized command override shape: %s", string(raw))
}
