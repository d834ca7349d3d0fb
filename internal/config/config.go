// Package config loads the percolated service configuration: the document
// schema a Monitor is built against, scoring/pool tuning, and the ambient
// server/logging/audit settings, from defaults plus layered YAML and
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fenwick-labs/percolate/internal/schema"
)

// Config is the complete percolated configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Scoring ScoringConfig `yaml:"scoring" json:"scoring"`
	Schema  SchemaConfig  `yaml:"schema" json:"schema"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Audit   AuditConfig   `yaml:"audit" json:"audit"`
}

// ServerConfig configures the HTTP and MCP service surfaces.
type ServerConfig struct {
	// HTTPAddr is the listen address for internal/httpapi (e.g. ":8765").
	HTTPAddr string `yaml:"http_addr" json:"http_addr"`
	// MetricsAddr is loaded and merged like the other settings but is not
	// read by serve: no separate metrics listener is started, and the
	// Prometheus /metrics handler is always served off HTTPAddr.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
	// MCPTransport selects the MCP server transport. Validate accepts
	// "stdio" or "sse"; internal/mcp's Server.Serve supports only "stdio"
	// and returns an error for any other value.
	MCPTransport string `yaml:"mcp_transport" json:"mcp_transport"`
	// ShutdownTimeoutSeconds is loaded and merged like the other settings
	// but is not read by serve, which returns as soon as it receives
	// SIGTERM/SIGINT without waiting for in-flight requests to drain.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
}

// ScoringConfig tunes the monitor's match-execution pool. It never touches
// the presearcher's TF-IDF term-selectivity algorithm itself (spec.md's
// Non-goals exclude scoring/ranking of matches) — only how much work the
// surrounding service does per match.
type ScoringConfig struct {
	// MatcherPoolSize bounds how many per-caller Matcher handles
	// internal/monitor.MatcherPool keeps warm at once.
	MatcherPoolSize int `yaml:"matcher_pool_size" json:"matcher_pool_size"`
}

// SchemaFieldConfig declares one field of the document schema a Monitor is
// built against.
type SchemaFieldConfig struct {
	Name string `yaml:"name" json:"name"`
	// Type is "text" or "boolean".
	Type string `yaml:"type" json:"type"`
	// Tokenizer names the tokenizer a text field is indexed with ("default"
	// or "code"). Ignored for boolean fields.
	Tokenizer string `yaml:"tokenizer,omitempty" json:"tokenizer,omitempty"`
}

// SchemaConfig declares the document schema a Monitor is built against.
type SchemaConfig struct {
	Fields []SchemaFieldConfig `yaml:"fields" json:"fields"`
}

// Build converts the declared fields into a *schema.Schema, resolving
// against the tokenizers already registered in tm.
func (sc SchemaConfig) Build(tm *schema.TokenizerManager) (*schema.Schema, error) {
	specs := make([]schema.FieldSpec, 0, len(sc.Fields))
	for _, f := range sc.Fields {
		spec := schema.FieldSpec{Name: f.Name}
		switch strings.ToLower(f.Type) {
		case "text", "":
			spec.Type = schema.Text
			tokenizerName := f.Tokenizer
			if tokenizerName == "" {
				tokenizerName = "default"
			}
			if _, ok := tm.Get(tokenizerName); !ok {
				return nil, fmt.Errorf("schema field %q references unknown tokenizer %q", f.Name, tokenizerName)
			}
			spec.Indexing = &schema.IndexingOptions{Tokenizer: tokenizerName}
		case "boolean":
			spec.Type = schema.Boolean
		default:
			return nil, fmt.Errorf("schema field %q has unsupported type %q", f.Name, f.Type)
		}
		specs = append(specs, spec)
	}
	return schema.New(specs...)
}

// LoggingConfig mirrors internal/logging.Config with YAML tags, kept as a
// separate type so the logging package has no dependency on config.
type LoggingConfig struct {
	Level         string `yaml:"level" json:"level"`
	FilePath      string `yaml:"file_path" json:"file_path"`
	MaxSizeMB     int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles      int    `yaml:"max_files" json:"max_files"`
	WriteToStderr bool   `yaml:"write_to_stderr" json:"write_to_stderr"`
}

// AuditConfig configures the write-only SQLite registration audit log.
type AuditConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	DatabasePath string `yaml:"database_path" json:"database_path"`
}

// NewConfig returns a Config with sensible defaults and a single "body"
// text field, enough to run percolated out of the box against free-text
// documents.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			HTTPAddr:               ":8765",
			MetricsAddr:            ":9090",
			MCPTransport:           "stdio",
			ShutdownTimeoutSeconds: 10,
		},
		Scoring: ScoringConfig{
			MatcherPoolSize: 64,
		},
		Schema: SchemaConfig{
			Fields: []SchemaFieldConfig{
				{Name: "body", Type: "text", Tokenizer: "default"},
			},
		},
		Logging: LoggingConfig{
			Level:         "info",
			FilePath:      defaultLogPath(),
			MaxSizeMB:     10,
			MaxFiles:      5,
			WriteToStderr: true,
		},
		Audit: AuditConfig{
			Enabled:      true,
			DatabasePath: defaultAuditDBPath(),
		},
	}
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".percolated", "logs", "server.log")
	}
	return filepath.Join(home, ".percolated", "logs", "server.log")
}

func defaultAuditDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".percolated", "audit.db")
	}
	return filepath.Join(home, ".percolated", "audit.db")
}

// GetUserConfigPath returns the path to the user/global configuration file,
// following the XDG Base Directory convention:
//   - $XDG_CONFIG_HOME/percolated/config.yaml, if set
//   - ~/.config/percolated/config.yaml, otherwise
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "percolated", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "percolated", "config.yaml")
	}
	return filepath.Join(home, ".config", "percolated", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadUserConfig loads the user configuration file. Returns a nil config
// and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}

// Load builds a Config from dir, applying sources in order of increasing
// precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/percolated/config.yaml)
//  3. Project config (.percolated.yaml in dir)
//  4. Environment variables (PERCOLATED_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads .percolated.yaml, falling back to .percolated.yml.
func (c *Config) loadFromFile(dir string) error {
	path, ok := ProjectConfigPath(dir)
	if !ok {
		return nil
	}
	return c.loadYAML(path)
}

// ProjectConfigPath returns the project config file found in dir
// (.percolated.yaml, falling back to .percolated.yml), and whether one
// exists at all. Used by callers that need to watch the file in addition
// to loading it, e.g. for hot-reloading the log level.
func ProjectConfigPath(dir string) (string, bool) {
	yamlPath := filepath.Join(dir, ".percolated.yaml")
	if fileExists(yamlPath) {
		return yamlPath, true
	}
	ymlPath := filepath.Join(dir, ".percolated.yml")
	if fileExists(ymlPath) {
		return ymlPath, true
	}
	return "", false
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero fields of other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Server.HTTPAddr != "" {
		c.Server.HTTPAddr = other.Server.HTTPAddr
	}
	if other.Server.MetricsAddr != "" {
		c.Server.MetricsAddr = other.Server.MetricsAddr
	}
	if other.Server.MCPTransport != "" {
		c.Server.MCPTransport = other.Server.MCPTransport
	}
	if other.Server.ShutdownTimeoutSeconds != 0 {
		c.Server.ShutdownTimeoutSeconds = other.Server.ShutdownTimeoutSeconds
	}

	if other.Scoring.MatcherPoolSize != 0 {
		c.Scoring.MatcherPoolSize = other.Scoring.MatcherPoolSize
	}

	if len(other.Schema.Fields) > 0 {
		c.Schema.Fields = other.Schema.Fields
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Audit.DatabasePath != "" {
		c.Audit.DatabasePath = other.Audit.DatabasePath
	}
}

// applyEnvOverrides applies PERCOLATED_* environment variable overrides,
// the highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PERCOLATED_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv("PERCOLATED_METRICS_ADDR"); v != "" {
		c.Server.MetricsAddr = v
	}
	if v := os.Getenv("PERCOLATED_MCP_TRANSPORT"); v != "" {
		c.Server.MCPTransport = v
	}
	if v := os.Getenv("PERCOLATED_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PERCOLATED_MATCHER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scoring.MatcherPoolSize = n
		}
	}
	if v := os.Getenv("PERCOLATED_AUDIT_ENABLED"); v != "" {
		c.Audit.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Scoring.MatcherPoolSize <= 0 {
		return fmt.Errorf("scoring.matcher_pool_size must be positive, got %d", c.Scoring.MatcherPoolSize)
	}

	validTransports := map[string]bool{"stdio": true, "sse": true}
	if !validTransports[strings.ToLower(c.Server.MCPTransport)] {
		return fmt.Errorf("server.mcp_transport must be 'stdio' or 'sse', got %s", c.Server.MCPTransport)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	if len(c.Schema.Fields) == 0 {
		return fmt.Errorf("schema.fields must declare at least one field")
	}
	seen := make(map[string]bool, len(c.Schema.Fields))
	for _, f := range c.Schema.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema field name must not be empty")
		}
		if seen[f.Name] {
			return fmt.Errorf("schema field %q declared more than once", f.Name)
		}
		seen[f.Name] = true
		switch strings.ToLower(f.Type) {
		case "text", "boolean", "":
		default:
			return fmt.Errorf("schema field %q has unsupported type %q", f.Name, f.Type)
		}
	}

	return nil
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
