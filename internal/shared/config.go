package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Sync     SyncConfig     `toml:"sync"`
	Asana    AsanaConfig    `toml:"asana"`
	Google   GoogleConfig   `toml:"google"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// SyncConfig controls the synchronization engine.
type SyncConfig struct {
	Tag                 string `toml:"tag"`
	IntervalMinutes     int    `toml:"interval_minutes"`
	DescriptionTemplate string `toml:"description_template"`
	CallTimeoutSeconds  int    `toml:"call_timeout_seconds"`
}

// AsanaConfig contains Asana API credentials.
type AsanaConfig struct {
	AccessToken       string  `toml:"access_token"`
	WorkspaceID       string  `toml:"workspace_id"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// GoogleConfig contains Google Calendar OAuth settings.
type GoogleConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	TokenFile       string `toml:"token_file"`
	CalendarID      string `toml:"calendar_id"`
	RedirectURI     string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials and deployment settings from environment variables.
//
// lookup is normally [os.LookupEnv]; empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	str("ASANA_ACCESS_TOKEN", &c.Asana.AccessToken)
	str("ASANA_WORKSPACE_ID", &c.Asana.WorkspaceID)
	str("GOOGLE_CREDENTIALS_FILE", &c.Google.CredentialsFile)
	str("GOOGLE_TOKEN_FILE", &c.Google.TokenFile)
	str("GOOGLE_CALENDAR_ID", &c.Google.CalendarID)
	str("SCHEDULE_TAG_NAME", &c.Sync.Tag)
	str("DATABASE_PATH", &c.Database.Path)
	str("LOG_LEVEL", &c.LogLevel)

	if err := num("SYNC_INTERVAL_MINUTES", &c.Sync.IntervalMinutes); err != nil {
		return err
	}
	return num("PORT", &c.Server.Port)
}

// Validate reports configuration that would make a sync run impossible.
func (c *Config) Validate() error {
	if c.Sync.Tag == "" {
		return fmt.Errorf("%w: sync.tag is required", ErrInvalidConfig)
	}
	if c.Sync.IntervalMinutes < 0 {
		return fmt.Errorf("%w: sync.interval_minutes must not be negative", ErrInvalidConfig)
	}
	if _, err := DescriptionVerbs(c.Sync.DescriptionTemplate); err != nil {
		return fmt.Errorf("%w: sync.description_template: %v", ErrInvalidConfig, err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	return nil
}

// DescriptionVerbs counts the %s verbs in an event description template.
//
// "%%" is a literal percent sign. Any other verb, or more than one %s, is an error.
func DescriptionVerbs(tmpl string) (int, error) {
	n := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return 0, fmt.Errorf("%w: trailing %% in %q", ErrInvalidArgument, tmpl)
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			n++
		default:
			return 0, fmt.Errorf("%w: unsupported verb %%%c in %q, only %%s is allowed", ErrInvalidArgument, tmpl[i], tmpl)
		}
	}
	if n > 1 {
		return 0, fmt.Errorf("%w: %q has %d %%s verbs, at most one is allowed", ErrInvalidArgument, tmpl, n)
	}
	return n, nil
}
