package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/obsrv-dev/obsrv/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "obsrv.json"

	// DefaultAddress is the default host listen address.
	DefaultAddress = "localhost:7070"

	// DefaultDescription is the default description file name.
	DefaultDescription = "store.json"

	// DefaultIndent is the default snapshot indentation.
	DefaultIndent = 2

	// MaxIndent is the largest accepted snapshot indentation.
	MaxIndent = 10

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "obsrv"
)

// Config represents the complete obsrv.json configuration.
type Config struct {
	// Description is the path to the description file, relative to the
	// config file's directory.
	Description string `json:"description,omitempty"`

	// Server contains HTTP host configuration.
	Server ServerConfig `json:"server,omitempty"`

	// JSON contains snapshot encoding configuration.
	JSON JSONConfig `json:"json,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Log contains logger configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP host settings.
type ServerConfig struct {
	// Address is the host:port to listen on.
	Address string `json:"address,omitempty"`
}

// JSONConfig contains snapshot encoding settings.
type JSONConfig struct {
	// Indent is the default indentation for GET /store. Zero is compact.
	Indent int `json:"indent"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers the metrics observer and the scrape endpoint.
	Enabled bool `json:"enabled"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the scrape endpoint path.
	Path string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled registers the tracing observer.
	Enabled bool `json:"enabled"`

	// TracerName is the tracer name passed to the global provider.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Description: DefaultDescription,
		Server: ServerConfig{
			Address: DefaultAddress,
		},
		JSON: JSONConfig{
			Indent: DefaultIndent,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for obsrv.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("O302").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass the description file directly").
				Wrap(err)
		}
		return nil, errors.New("O301").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("O301").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("O301").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("O301").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// DescriptionPath returns the absolute path to the description file.
func (c *Config) DescriptionPath() string {
	path := c.Description
	if path == "" {
		path = DefaultDescription
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Description == "" {
		c.Description = DefaultDescription
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Tracing
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultNamespace
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return errors.New("O301").
			WithDetailf("server.address %q: %v", c.Server.Address, err).
			WithSuggestion("Use host:port, for example localhost:7070")
	}
	if c.JSON.Indent < 0 || c.JSON.Indent > MaxIndent {
		return errors.New("O301").
			WithDetailf("json.indent must be between 0 and %d", MaxIndent)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("O301").
			WithDetailf("metrics.path %q must start with /", c.Metrics.Path)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("O301").
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("O301").
			WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// Logger builds a slog.Logger writing to w with the configured level and
// format. Invalid levels fall back to info.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
