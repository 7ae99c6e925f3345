package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Volume    VolumeConfig
	Connector ConnectorConfig

	// VolumesFile optionally declares several volumes in YAML or TOML. When
	// set it replaces the single Volume section.
	VolumesFile string `envconfig:"VOLUMES_FILE"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	Gzip            bool          `envconfig:"GZIP_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin settings for the web client.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// VolumeConfig describes one local volume.
type VolumeConfig struct {
	ID            string   `envconfig:"VOLUME_ID" default:"l1_" yaml:"id" toml:"id"`
	Root          string   `envconfig:"ROOT_DIR" default:"./files" yaml:"root" toml:"root"`
	Label         string   `envconfig:"ROOT_LABEL" default:"Home" yaml:"label" toml:"label"`
	MaxTreeDepth  int      `envconfig:"MAX_TREE_DEPTH" default:"2" yaml:"max_tree_depth" toml:"max_tree_depth"`
	UploadMaxSize ByteSize `envconfig:"UPLOAD_MAX_SIZE" default:"16MiB" yaml:"upload_max_size" toml:"upload_max_size"`
	HiddenGlobs   []string `envconfig:"HIDDEN_GLOBS" yaml:"hidden_globs" toml:"hidden_globs"`
	SearchLimit   int      `envconfig:"SEARCH_LIMIT" default:"500" yaml:"search_limit" toml:"search_limit"`
	SniffContent  bool     `envconfig:"SNIFF_CONTENT" default:"false" yaml:"sniff_content" toml:"sniff_content"`
}

// ConnectorConfig holds command dispatch settings.
type ConnectorConfig struct {
	Path           string        `envconfig:"CONNECTOR_PATH" default:"/connector"`
	SearchTimeout  time.Duration `envconfig:"SEARCH_TIMEOUT" default:"10s"`
	MaxUploadFiles int           `envconfig:"UPLOAD_MAX_FILES" default:"20"`
}

// ByteSize is a byte count that accepts human sizes such as "16MB" or "1 GiB".
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", text, err)
	}
	*b = ByteSize(n)
	return nil
}

// String formats the size in IEC units.
func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 15 * time.Second,
			Gzip:            true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Volume: VolumeConfig{
			ID:            "l1_",
			Root:          "./files",
			Label:         "Home",
			MaxTreeDepth:  2,
			UploadMaxSize: 16 << 20,
			SearchLimit:   500,
		},
		Connector: ConnectorConfig{
			Path:           "/connector",
			SearchTimeout:  10 * time.Second,
			MaxUploadFiles: 20,
		},
	}
}

// Volumes returns the volumes to mount: those of VolumesFile if set, otherwise
// the single Volume section. Tunables a file entry leaves out are taken from the
// Volume section; an explicit zero in the file is kept.
func (c *Config) Volumes() ([]VolumeConfig, error) {
	if c.VolumesFile == "" {
		return []VolumeConfig{c.Volume}, nil
	}
	return loadVolumesFile(c.VolumesFile, c.Volume)
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive when enabled")
	}
	if c.Connector.Path == "" || c.Connector.Path[0] != '/' {
		return fmt.Errorf("connector path %q must start with /", c.Connector.Path)
	}
	if c.Connector.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive")
	}
	if c.Connector.MaxUploadFiles <= 0 {
		return fmt.Errorf("upload max files must be positive")
	}

	vols, err := c.Volumes()
	if err != nil {
		return err
	}
	if len(vols) == 0 {
		return fmt.Errorf("no volumes configured")
	}
	seen := make(map[string]bool, len(vols))
	for _, v := range vols {
		if err := v.Validate(); err != nil {
			return err
		}
		if seen[v.ID] {
			return fmt.Errorf("duplicate volume id %q", v.ID)
		}
		seen[v.ID] = true
	}
	return nil
}

// Validate reports an unusable volume declaration. Whether the root exists is
// checked when the volume is opened.
func (v VolumeConfig) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("volume id is required")
	}
	if v.Root == "" {
		return fmt.Errorf("volume %s: root directory is required", v.ID)
	}
	if v.MaxTreeDepth < 0 {
		return fmt.Errorf("volume %s: max tree depth must not be negative", v.ID)
	}
	if v.SearchLimit < 0 {
		return fmt.Errorf("volume %s: search limit must not be negative", v.ID)
	}
	return nil
}
