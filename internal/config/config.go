package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/oriys/oapi/internal/logging"
)

// Duration is a time.Duration that reads "5s" style strings or integer
// nanoseconds from JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// EndpointConfig selects how the automation endpoint is reached
type EndpointConfig struct {
	Address     string   `json:"address"`   // unix:///path, tcp://host:port, vsock://cid:port
	Transport   string   `json:"transport"` // wire, grpc
	Codec       string   `json:"codec"`     // json, proto (wire only)
	DialTimeout Duration `json:"dial_timeout"`
}

// APIConfig selects the API version and its contracts
type APIConfig struct {
	Version string `json:"version"` // v14, v15
	Program string `json:"program,omitempty"`
	// CatalogFile is merged over the builtin catalog.
	CatalogFile string `json:"catalog_file,omitempty"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Stream   string `json:"stream"`
	MaxLen   int64  `json:"max_len"`
}

// JournalConfig holds call journal settings
type JournalConfig struct {
	Sink     string      `json:"sink"` // none, file, redis, postgres
	Path     string      `json:"path"`
	Redis    RedisConfig `json:"redis"`
	Postgres string      `json:"postgres_dsn"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool    `json:"enabled"`
	Exporter    string  `json:"exporter"`
	Endpoint    string  `json:"endpoint"`
	ServiceName string  `json:"service_name"`
	SampleRate  float64 `json:"sample_rate"`
}

// ObservabilityConfig holds logging, metrics and tracing settings
type ObservabilityConfig struct {
	LogLevel    string        `json:"log_level"`
	LogFormat   string        `json:"log_format"` // text, json
	CallLog     string        `json:"call_log,omitempty"`
	MetricsAddr string        `json:"metrics_addr"`
	Namespace   string        `json:"metrics_namespace"`
	Tracing     TracingConfig `json:"tracing"`
}

// Config is the central configuration struct embedding all component configs
type Config struct {
	Endpoint      EndpointConfig      `json:"endpoint"`
	API           APIConfig           `json:"api"`
	Journal       JournalConfig       `json:"journal"`
	Observability ObservabilityConfig `json:"observability"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			Address:     "tcp://127.0.0.1:7400",
			Transport:   "wire",
			Codec:       "json",
			DialTimeout: Duration(5 * time.Second),
		},
		API: APIConfig{
			Version: "v14",
		},
		Journal: JournalConfig{
			Sink: "none",
			Path: "oapi-calls.jsonl",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Stream: "oapi:calls",
				MaxLen: 100000,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
			Namespace: "oapi",
			Tracing: TracingConfig{
				Exporter:    "otlp-http",
				Endpoint:    "localhost:4318",
				ServiceName: "oapi",
				SampleRate:  1.0,
			},
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("OAPI_ENDPOINT"); v != "" {
		cfg.Endpoint.Address = v
	}
	if v := os.Getenv("OAPI_TRANSPORT"); v != "" {
		cfg.Endpoint.Transport = v
	}
	if v := os.Getenv("OAPI_CODEC"); v != "" {
		cfg.Endpoint.Codec = v
	}
	if v := os.Getenv("OAPI_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Endpoint.DialTimeout = Duration(d)
		}
	}
	if v := os.Getenv("OAPI_API_VERSION"); v != "" {
		cfg.API.Version = v
	}
	if v := os.Getenv("OAPI_PROGRAM"); v != "" {
		cfg.API.Program = v
	}
	if v := os.Getenv("OAPI_CATALOG_FILE"); v != "" {
		cfg.API.CatalogFile = v
	}
	if v := os.Getenv("OAPI_JOURNAL"); v != "" {
		cfg.Journal.Sink = v
	}
	if v := os.Getenv("OAPI_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("OAPI_REDIS_ADDR"); v != "" {
		cfg.Journal.Redis.Addr = v
	}
	if v := os.Getenv("OAPI_REDIS_PASSWORD"); v != "" {
		cfg.Journal.Redis.Password = v
	}
	if v := os.Getenv("OAPI_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Journal.Redis.DB = n
		}
	}
	if v := os.Getenv("OAPI_POSTGRES_DSN"); v != "" {
		cfg.Journal.Postgres = v
	}
	if v := os.Getenv("OAPI_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("OAPI_LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
	if v := os.Getenv("OAPI_METRICS_ADDR"); v != "" {
		cfg.Observability.MetricsAddr = v
	}
	if v := os.Getenv("OAPI_TRACING_ENABLED"); v != "" {
		cfg.Observability.Tracing.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("OAPI_TRACING_ENDPOINT"); v != "" {
		cfg.Observability.Tracing.Endpoint = v
	}
}

// Load reads path (when non-empty) over the defaults, then applies the
// environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Endpoint.Transport {
	case "wire", "grpc":
	default:
		return fmt.Errorf("endpoint.transport: unknown transport %q", c.Endpoint.Transport)
	}
	switch c.Endpoint.Codec {
	case "", "json", "proto":
	default:
		return fmt.Errorf("endpoint.codec: unknown codec %q", c.Endpoint.Codec)
	}
	switch c.API.Version {
	case "v14", "v15":
	default:
		return fmt.Errorf("api.version: unknown version %q", c.API.Version)
	}
	switch c.Journal.Sink {
	case "", "none", "file", "redis", "postgres":
	default:
		return fmt.Errorf("journal.sink: unknown sink %q", c.Journal.Sink)
	}
	if c.Journal.Sink == "postgres" && c.Journal.Postgres == "" {
		return fmt.Errorf("journal.postgres_dsn is required for the postgres sink")
	}
	if _, err := logging.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("observability.log_level: %w", err)
	}
	switch c.Observability.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("observability.log_format: unknown format %q", c.Observability.LogFormat)
	}
	return nil
}
