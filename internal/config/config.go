package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hpungsan/passforge/internal/generator"
)

// Environment variables that override file configuration.
const (
	EnvWebBind           = "PASSFORGE_WEB_BIND"
	EnvWebPort           = "PASSFORGE_WEB_PORT"
	EnvAttemptsPerSecond = "PASSFORGE_ATTEMPTS_PER_SECOND"
)

// Config holds application configuration.
type Config struct {
	// DefaultOptions are used when a generate request carries neither options
	// nor a preset. Nil means generator.DefaultOptions().
	DefaultOptions *generator.Options `json:"default_options,omitempty"`

	// AttemptsPerSecond is the attacker guess rate used for crack-time estimates.
	AttemptsPerSecond float64 `json:"attempts_per_second,omitempty"`

	// BatchConcurrency bounds parallel generation inside a batch.
	BatchConcurrency int `json:"batch_concurrency,omitempty"`

	// AllowedPaths is an allowlist of directories for preset import/export.
	// Paths outside ~/.passforge/exports must be directly in one of these
	// unless AllowUnsafePaths is set.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlinks are still rejected.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "password", "preset".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebBind is the interface the web UI listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the port the web UI listens on.
	WebPort int `json:"web_port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AttemptsPerSecond: 1e9,
		BatchConcurrency:  generator.DefaultConcurrency,
		WebBind:           "127.0.0.1",
		WebPort:           7391,
	}
}

// GeneratorDefaults returns the configured default options.
func (c *Config) GeneratorDefaults() generator.Options {
	if c == nil || c.DefaultOptions == nil {
		return generator.DefaultOptions()
	}
	return *c.DefaultOptions
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.passforge) and repo
// (.passforge) directories. Repo config is found by walking upward from
// startDir. Repo config takes precedence for scalar values; arrays are merged.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .passforge/config.json. Returns empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".passforge", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DefaultOptions = overlay.DefaultOptions
	if result.DefaultOptions == nil {
		result.DefaultOptions = base.DefaultOptions
	}

	result.AttemptsPerSecond = overlay.AttemptsPerSecond
	if result.AttemptsPerSecond == 0 {
		result.AttemptsPerSecond = base.AttemptsPerSecond
	}

	result.BatchConcurrency = overlay.BatchConcurrency
	if result.BatchConcurrency == 0 {
		result.BatchConcurrency = base.BatchConcurrency
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.WebBind = overlay.WebBind
	if result.WebBind == "" {
		result.WebBind = base.WebBind
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// ReadEnv collects PASSFORGE_* settings from the given .env files (missing
// files are skipped) with the process environment taking precedence.
func ReadEnv(envFiles ...string) (map[string]string, error) {
	env := make(map[string]string)
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		vals, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	}
	for _, key := range []string{EnvWebBind, EnvWebPort, EnvAttemptsPerSecond} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides cfg fields from env. Empty values are ignored.
func ApplyEnv(cfg *Config, env map[string]string) error {
	if v := strings.TrimSpace(env[EnvWebBind]); v != "" {
		cfg.WebBind = v
	}
	if v := strings.TrimSpace(env[EnvWebPort]); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvWebPort, v)
		}
		cfg.WebPort = port
	}
	if v := strings.TrimSpace(env[EnvAttemptsPerSecond]); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return fmt.Errorf("%s: invalid rate %q", EnvAttemptsPerSecond, v)
		}
		cfg.AttemptsPerSecond = rate
	}
	return nil
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
