package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tellergo-dev/tellergo/pkg/security"
)

// Duration decodes YAML strings like "90s" or "1h30m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the application configuration
type Config struct {
	// API Keys
	OpenAIKey string `yaml:"openai_key"`

	// GCP Configuration
	GCPProject     string `yaml:"gcp_project"`
	GCPCredentials string `yaml:"gcp_credentials"`

	// Model Configuration
	DefaultModel string  `yaml:"default_model"`
	MaxTokens    int     `yaml:"max_tokens"`
	Temperature  float64 `yaml:"temperature"`
	MaxToolTurns int     `yaml:"max_tool_turns"`

	// Identity defaults for local chat sessions
	TenantID string `yaml:"tenant_id"`
	UserID   string `yaml:"user_id"`

	// Session and checkpoint persistence
	Session    StoreConfig `yaml:"session"`
	Checkpoint StoreConfig `yaml:"checkpoint"`

	// Tool backends
	Tools ToolsConfig `yaml:"tools"`

	// Runtime Configuration
	Runtime RuntimeConfig `yaml:"runtime"`

	// Maintenance Configuration
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// StoreConfig selects and configures a persistence backend.
type StoreConfig struct {
	Provider  string   `yaml:"provider"` // memory, file, redis, firestore
	Path      string   `yaml:"path"`
	RedisAddr string   `yaml:"redis_addr"`
	RedisDB   int      `yaml:"redis_db"`
	KeyPrefix string   `yaml:"key_prefix"`
	TTL       Duration `yaml:"ttl"`
}

// ToolsConfig holds tool backend settings.
type ToolsConfig struct {
	PerToolRate  float64 `yaml:"per_tool_rate"`
	PerToolBurst int     `yaml:"per_tool_burst"`
}

// RuntimeConfig holds runtime configuration
type RuntimeConfig struct {
	TurnsPerSecond float64 `yaml:"turns_per_second"`
	TurnBurst      int     `yaml:"turn_burst"`
	EnableMetrics  bool    `yaml:"enable_metrics"`
	MetricsAddr    string  `yaml:"metrics_addr"`
	EnableTracing  bool    `yaml:"enable_tracing"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
}

// MaintenanceConfig controls the stale session sweeper.
type MaintenanceConfig struct {
	SweepSchedule string   `yaml:"sweep_schedule"` // cron expression
	SessionMaxAge Duration `yaml:"session_max_age"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parser := security.NewSafeYAMLParser(security.DefaultYAMLLimits())
	var cfg Config
	if err := parser.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DefaultModel == "" {
		c.DefaultModel = "gpt-4o-mini"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxToolTurns == 0 {
		c.MaxToolTurns = 8
	}
	if c.TenantID == "" {
		c.TenantID = "contoso"
	}
	if c.UserID == "" {
		c.UserID = "local"
	}
	if c.Session.Provider == "" {
		c.Session.Provider = "memory"
	}
	if c.Checkpoint.Provider == "" {
		c.Checkpoint.Provider = "memory"
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "tellergo:session:"
	}
	if c.Checkpoint.KeyPrefix == "" {
		c.Checkpoint.KeyPrefix = "tellergo:checkpoint:"
	}
	if c.Runtime.TurnsPerSecond == 0 {
		c.Runtime.TurnsPerSecond = 5
	}
	if c.Runtime.TurnBurst == 0 {
		c.Runtime.TurnBurst = 10
	}
	if c.Runtime.MetricsAddr == "" {
		c.Runtime.MetricsAddr = ":9090"
	}
	if c.Maintenance.SweepSchedule == "" {
		c.Maintenance.SweepSchedule = "@hourly"
	}
	if c.Maintenance.SessionMaxAge == 0 {
		c.Maintenance.SessionMaxAge = Duration(24 * time.Hour)
	}

	// Load credentials from environment if not in config
	if c.OpenAIKey == "" {
		c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.GCPProject == "" {
		c.GCPProject = os.Getenv("GCP_PROJECT")
	}
	if c.GCPCredentials == "" {
		c.GCPCredentials = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model is required")
	}

	switch c.Session.Provider {
	case "memory", "file", "redis", "firestore":
	default:
		return fmt.Errorf("unknown session provider: %s", c.Session.Provider)
	}
	switch c.Checkpoint.Provider {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("unknown checkpoint provider: %s", c.Checkpoint.Provider)
	}

	if c.Session.Provider == "file" && c.Session.Path == "" {
		return fmt.Errorf("session.path is required for the file provider")
	}
	if c.Checkpoint.Provider == "file" && c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path is required for the file provider")
	}
	if c.Session.Provider == "redis" && c.Session.RedisAddr == "" {
		return fmt.Errorf("session.redis_addr is required for the redis provider")
	}
	if c.Checkpoint.Provider == "redis" && c.Checkpoint.RedisAddr == "" {
		return fmt.Errorf("checkpoint.redis_addr is required for the redis provider")
	}
	if c.Session.Provider == "firestore" && c.GCPProject == "" {
		return fmt.Errorf("gcp_project is required for the firestore provider")
	}

	return nil
}
