package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spiffcs/webtask/internal/constants"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DefaultFormat  string            `yaml:"default_format,omitempty" json:"default_format,omitempty"`
	StartURL       string            `yaml:"start_url,omitempty" json:"start_url,omitempty"`
	UserAgent      string            `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timeout        string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	TokenEnv       string            `yaml:"token_env,omitempty" json:"token_env,omitempty"`
	DefaultHeaders map[string]string `yaml:"default_headers,omitempty" json:"default_headers,omitempty"`

	// Routes maps a location fragment to a counter action name.
	Routes map[string]string `yaml:"routes,omitempty" json:"routes,omitempty"`
}

// DefaultConfigDir returns the default config directory
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".webtask"
	}
	return filepath.Join(configDir, "webtask")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LocalConfigPath returns the path to the local config file in the current directory
func LocalConfigPath() string {
	return ".webtask.yaml"
}

// Load loads the configuration from disk.
// It first loads the global config from the user config directory, then
// merges any local .webtask.yaml on top (local values take precedence).
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), LocalConfigPath())
}

// LoadFrom is Load with explicit paths. Missing files are skipped.
func LoadFrom(globalPath, localPath string) (*Config, error) {
	cfg := &Config{}

	if err := readInto(globalPath, cfg); err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}

	var localCfg Config
	if err := readInto(localPath, &localCfg); err != nil {
		return nil, fmt.Errorf("local config: %w", err)
	}
	cfg = mergeConfig(cfg, &localCfg)

	// Set defaults if still empty
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "text"
	}

	if _, err := cfg.GetTimeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readInto(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeConfig merges local config on top of global config.
// Local values take precedence; unset local values preserve global values.
func mergeConfig(global, local *Config) *Config {
	result := &Config{
		DefaultFormat: pick(local.DefaultFormat, global.DefaultFormat),
		StartURL:      pick(local.StartURL, global.StartURL),
		UserAgent:     pick(local.UserAgent, global.UserAgent),
		Timeout:       pick(local.Timeout, global.Timeout),
		TokenEnv:      pick(local.TokenEnv, global.TokenEnv),
	}

	// Headers merge per name
	if len(global.DefaultHeaders) > 0 || len(local.DefaultHeaders) > 0 {
		result.DefaultHeaders = make(map[string]string, len(global.DefaultHeaders)+len(local.DefaultHeaders))
		for k, v := range global.DefaultHeaders {
			result.DefaultHeaders[k] = v
		}
		for k, v := range local.DefaultHeaders {
			result.DefaultHeaders[k] = v
		}
	}

	// A route table is replaced as a whole
	if len(local.Routes) > 0 {
		result.Routes = local.Routes
	} else {
		result.Routes = global.Routes
	}

	return result
}

func pick(local, global string) string {
	if local != "" {
		return local
	}
	return global
}

// GetTimeout returns the configured fetch timeout, or the default.
func (c *Config) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return constants.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

// GetToken returns the bearer token from the configured environment
// variable. Tokens are only read from the environment, never from the file.
func (c *Config) GetToken() string {
	return os.Getenv(c.GetTokenEnv())
}

// GetTokenEnv returns the environment variable holding the bearer token.
func (c *Config) GetTokenEnv() string {
	if c.TokenEnv != "" {
		return c.TokenEnv
	}
	return constants.DefaultTokenEnv
}

// GetStartURL returns the initial location of the in-memory window.
func (c *Config) GetStartURL() string {
	if c.StartURL != "" {
		return c.StartURL
	}
	return constants.DefaultStartURL
}

// GetUserAgent returns the configured user agent, or one built from version.
func (c *Config) GetUserAgent(version string) string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return constants.DefaultUserAgentPrefix + "/" + version
}

// SettableKeys lists the keys accepted by Set.
var SettableKeys = []string{"format", "timeout", "start_url", "user_agent", "token_env"}

// Set assigns a scalar setting by key after validating value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "token":
		return fmt.Errorf("tokens cannot be stored in config files; set the %s environment variable instead", c.GetTokenEnv())
	case "format":
		if value != "text" && value != "json" {
			return fmt.Errorf("invalid format: %s (must be text or json)", value)
		}
		c.DefaultFormat = value
	case "timeout":
		prev := c.Timeout
		c.Timeout = value
		if _, err := c.GetTimeout(); err != nil {
			c.Timeout = prev
			return err
		}
	case "start_url":
		c.StartURL = value
	case "user_agent":
		c.UserAgent = value
	case "token_env":
		if strings.ContainsAny(value, "= \t") {
			return fmt.Errorf("invalid environment variable name %q", value)
		}
		c.TokenEnv = value
	default:
		return fmt.Errorf("unknown config key: %s (available: %s)", key, strings.Join(SettableKeys, ", "))
	}
	return nil
}

// DefaultRoutes returns the built-in fragment routes by action name.
func DefaultRoutes() map[string]string {
	return map[string]string{
		"#increment": "increment",
		"#decrement": "decrement",
	}
}

// DefaultConfig returns a fully populated config with all default values.
// This is useful for generating a complete config file template.
func DefaultConfig() *Config {
	return &Config{
		DefaultFormat:  "text",
		StartURL:       constants.DefaultStartURL,
		Timeout:        constants.DefaultTimeout.String(),
		TokenEnv:       constants.DefaultTokenEnv,
		DefaultHeaders: map[string]string{"Accept": "*/*"},
		Routes:         DefaultRoutes(),
	}
}

// ToYAML returns the config as a YAML string
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// ConfigPathInfo contains information about config file paths
type ConfigPathInfo struct {
	GlobalPath   string
	GlobalExists bool
	LocalPath    string
	LocalExists  bool
}

// GetConfigPaths returns path info for both global and local configs
func GetConfigPaths() ConfigPathInfo {
	globalPath := ConfigPath()
	localPath := LocalConfigPath()

	// Get absolute path for local config
	absLocalPath, err := filepath.Abs(localPath)
	if err != nil {
		absLocalPath = localPath
	}

	_, globalErr := os.Stat(globalPath)
	_, localErr := os.Stat(localPath)

	return ConfigPathInfo{
		GlobalPath:   globalPath,
		GlobalExists: globalErr == nil,
		LocalPath:    absLocalPath,
		LocalExists:  localErr == nil,
	}
}

// MinimalConfig returns a minimal config template with comments
func MinimalConfig() string {
	return `# webtask configuration file
# See: webtask config defaults  (for all available options)

# Output format for fetch: text or json
default_format: text

# Upper bound on a fetch before it is cancelled
# timeout: 30s

# Environment variable holding a bearer token (never store the token here)
# token_env: WEBTASK_TOKEN

# Headers sent with every request (optional)
# default_headers:
#   Accept: application/json

# Counter demo: initial location and fragment routes
# start_url: https://counter.local/
# routes:
#   "#increment": increment
#   "#decrement": decrement
`
}

// SaveTo writes content to a specific path, creating directories as needed
func SaveTo(path string, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}
