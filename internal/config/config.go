package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Alert    AlertConfig    `yaml:"alert"`
	Search   SearchConfig   `yaml:"search"`
	Cache    CacheConfig    `yaml:"cache"`
	Worker   WorkerConfig   `yaml:"worker"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains replica database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig contains the shared secret expected from the change feed.
type AuthConfig struct {
	ServiceKey string `yaml:"-"` // env-only, never in YAML
}

// AlertConfig contains chat-ops alert settings.
type AlertConfig struct {
	WebhookURL string   `yaml:"-"` // env-only, never in YAML
	Timeout    Duration `yaml:"timeout"`
}

// SearchConfig contains search settings.
type SearchConfig struct {
	DefaultRadius int      `yaml:"default_radius"`
	MaxResults    int      `yaml:"max_results"`
	CacheTTL      Duration `yaml:"cache_ttl"`
}

// CacheConfig contains the optional Redis search cache settings.
// An empty RedisAddr disables the cache.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"-"` // env-only, never in YAML
	RedisDB       int    `yaml:"redis_db"`
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	StatsInterval Duration `yaml:"stats_interval"`
}

// SnapshotConfig contains replica snapshot settings. A zero Interval
// disables the snapshot worker; an empty Bucket keeps snapshots local.
type SnapshotConfig struct {
	Interval  Duration `yaml:"interval"`
	Dir       string   `yaml:"dir"`
	Bucket    string   `yaml:"bucket"`
	Endpoint  string   `yaml:"endpoint"`
	Region    string   `yaml:"region"`
	Prefix    string   `yaml:"prefix"`
	UseSSL    *bool    `yaml:"use_ssl"`
	AccessKey string   `yaml:"-"` // env-only, never in YAML
	SecretKey string   `yaml:"-"` // env-only, never in YAML
	URLExpiry Duration `yaml:"url_expiry"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
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

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// A .env file in the working directory, if present, seeds the environment
// without overriding variables that are already set.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := newDefaults()

	// Determine config path
	configPath := getEnv("EDGEREPLICA_CONFIG_PATH", "config/edgereplica.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	// Load YAML file (file must exist for this function)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOffline loads configuration like Load but skips validation, for
// offline commands that never serve traffic and so need no secrets.
func LoadOffline() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := newDefaults()
	configPath := getEnv("EDGEREPLICA_CONFIG_PATH", "config/edgereplica.yaml")
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/edgereplica.db",
		},
		Alert: AlertConfig{
			Timeout: Duration(5 * time.Second),
		},
		Search: SearchConfig{
			DefaultRadius: 5000,
			MaxResults:    50,
			CacheTTL:      Duration(5 * time.Minute),
		},
		Worker: WorkerConfig{
			StatsInterval: Duration(1 * time.Minute),
		},
		Snapshot: SnapshotConfig{
			Dir:       "data/snapshots",
			Prefix:    "edgereplica",
			URLExpiry: Duration(15 * time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadDotEnv loads a dotenv file if it exists.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("EDGEREPLICA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("EDGEREPLICA_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("EDGEREPLICA_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("EDGEREPLICA_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("EDGEREPLICA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Secrets keep the names the upstream deployment already uses.
	if v := os.Getenv("SYNC_SERVICE_KEY"); v != "" {
		cfg.Auth.ServiceKey = v
	}
	if v := os.Getenv("ALERT_WEBHOOK_URL"); v != "" {
		cfg.Alert.WebhookURL = v
	}
	if v := os.Getenv("EDGEREPLICA_ALERT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Alert.Timeout = Duration(d)
		}
	}

	// Search
	if v := os.Getenv("EDGEREPLICA_SEARCH_DEFAULT_RADIUS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultRadius = n
		}
	}
	if v := os.Getenv("EDGEREPLICA_SEARCH_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.MaxResults = n
		}
	}
	if v := os.Getenv("EDGEREPLICA_SEARCH_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Search.CacheTTL = Duration(d)
		}
	}

	// Cache
	if v := os.Getenv("EDGEREPLICA_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("EDGEREPLICA_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("EDGEREPLICA_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}

	// Worker
	if v := os.Getenv("EDGEREPLICA_STATS_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Worker.StatsInterval = Duration(d)
		}
	}

	// Snapshot
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Snapshot.Interval = Duration(d)
		}
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_DIR"); v != "" {
		cfg.Snapshot.Dir = v
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_BUCKET"); v != "" {
		cfg.Snapshot.Bucket = v
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_ENDPOINT"); v != "" {
		cfg.Snapshot.Endpoint = v
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_REGION"); v != "" {
		cfg.Snapshot.Region = v
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_PREFIX"); v != "" {
		cfg.Snapshot.Prefix = v
	}
	if v := os.Getenv("EDGEREPLICA_SNAPSHOT_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Snapshot.UseSSL = &b
		}
	}
	if v := os.Getenv("EDGEREPLICA_S3_ACCESS_KEY"); v != "" {
		cfg.Snapshot.AccessKey = v
	}
	if v := os.Getenv("EDGEREPLICA_S3_SECRET_KEY"); v != "" {
		cfg.Snapshot.SecretKey = v
	}

	// Log
	if v := os.Getenv("EDGEREPLICA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EDGEREPLICA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that required configuration values are set.
// In dev mode (EDGEREPLICA_DEV_MODE=true), service key validation is skipped.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Search.MaxResults <= 0 || c.Search.MaxResults > 50 {
		return fmt.Errorf("search.max_results must be between 1 and 50, got %d", c.Search.MaxResults)
	}
	if c.Snapshot.Interval < 0 {
		return fmt.Errorf("snapshot.interval must not be negative, got %s", time.Duration(c.Snapshot.Interval))
	}
	if c.Snapshot.Bucket != "" && c.Snapshot.Endpoint == "" {
		return errors.New("snapshot.endpoint is required when snapshot.bucket is set")
	}
	if c.Search.DefaultRadius <= 0 {
		return fmt.Errorf("search.default_radius must be positive, got %d", c.Search.DefaultRadius)
	}

	// Dev mode bypasses service key validation
	if os.Getenv("EDGEREPLICA_DEV_MODE") == "true" {
		return nil
	}

	if c.Auth.ServiceKey == "" {
		return errors.New("SYNC_SERVICE_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
