package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vstore/internal/errors"
)

// FileNames are the configuration files Load looks for, in order.
var FileNames = []string{"vstore.toml", "vstore.yaml", "vstore.yml"}

const (
	DefaultLogLevel    = "info"
	DefaultCodec       = "json"
	DefaultBackend     = BackendFile
	DefaultDir         = ".vstore"
	DefaultDSN         = "vstore.db"
	DefaultTable       = "vstore_items"
	DefaultS3Prefix    = "vstore/"
	DefaultAddr        = ":8080"
	DefaultMetricsPath = "/metrics"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
	BackendRemote = "remote"
)

var (
	backends  = []string{BackendMemory, BackendFile, BackendSQLite, BackendS3, BackendRemote}
	codecs    = []string{"json", "yaml", "toml", "text"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the vstore.toml / vstore.yaml schema.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	// Codec encodes values written by the CLI: json, yaml, toml or text.
	Codec string `toml:"codec" yaml:"codec"`

	Storage StorageConfig `toml:"storage" yaml:"storage"`
	Serve   ServeConfig   `toml:"serve" yaml:"serve"`

	configPath string
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend string `toml:"backend" yaml:"backend"`

	// Prefix namespaces every key, for any backend.
	Prefix string `toml:"prefix" yaml:"prefix"`

	// Dir is the file backend's directory.
	Dir string `toml:"dir" yaml:"dir"`

	// DSN and Table configure the sqlite backend.
	DSN   string `toml:"dsn" yaml:"dsn"`
	Table string `toml:"table" yaml:"table"`

	Bucket   string `toml:"bucket" yaml:"bucket"`
	S3Prefix string `toml:"s3_prefix" yaml:"s3_prefix"`
	Region   string `toml:"region" yaml:"region"`

	// URL is the base URL of a `vstore serve` instance for the remote backend.
	URL string `toml:"url" yaml:"url"`
}

// ServeConfig configures `vstore serve`.
type ServeConfig struct {
	Addr        string `toml:"addr" yaml:"addr"`
	MetricsPath string `toml:"metrics_path" yaml:"metrics_path"`
}

// New returns a Config with every default applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	setDefault(&c.LogLevel, DefaultLogLevel)
	setDefault(&c.Codec, DefaultCodec)
	setDefault(&c.Storage.Backend, DefaultBackend)
	setDefault(&c.Storage.Dir, DefaultDir)
	setDefault(&c.Storage.DSN, DefaultDSN)
	setDefault(&c.Storage.Table, DefaultTable)
	setDefault(&c.Storage.S3Prefix, DefaultS3Prefix)
	setDefault(&c.Serve.Addr, DefaultAddr)
	setDefault(&c.Serve.MetricsPath, DefaultMetricsPath)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Load reads the first of FileNames found in dir. With none present it
// returns the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("V001").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'vstore init' to write one with the defaults")
		}
		return nil, errors.New("V002").Wrap(err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(path, data, cfg)
	default:
		return nil, errors.New("V005").WithDetail(fmt.Sprintf("%s has extension %q", path, ext))
	}
	if err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		e := errors.New("V002").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid TOML").
			Wrap(err)
		var perr toml.ParseError
		if stderrors.As(err, &perr) && perr.Position.Line > 0 {
			e.WithLocation(path, perr.Position.Line, 0)
		}
		return e
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return errors.New("V003").
			WithDetail(fmt.Sprintf("Unknown configuration key %q in %s", undecoded[0].String(), path))
	}
	return nil
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(cfg)
	if err == nil || stderrors.Is(err, io.EOF) {
		return nil
	}

	e := errors.New("V002").
		WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML").
		Wrap(err)
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			e.WithLocation(path, line, 0)
		}
	}
	return e
}

// Validate checks that every value is within its allowed set and that the
// selected backend has what it needs.
func (c *Config) Validate() error {
	if !contains(logLevels, c.LogLevel) {
		return invalid("log_level", c.LogLevel, logLevels)
	}
	if !contains(codecs, c.Codec) {
		return invalid("codec", c.Codec, codecs)
	}
	if !contains(backends, c.Storage.Backend) {
		return errors.New("V004").
			WithDetail(fmt.Sprintf("storage.backend is %q; use one of %s", c.Storage.Backend, strings.Join(backends, ", ")))
	}

	switch c.Storage.Backend {
	case BackendS3:
		if c.Storage.Bucket == "" {
			return required("storage.bucket", BackendS3)
		}
	case BackendRemote:
		if c.Storage.URL == "" {
			return required("storage.url", BackendRemote)
		}
	}

	if !strings.HasPrefix(c.Serve.MetricsPath, "/") {
		return errors.New("V003").
			WithDetail(fmt.Sprintf("serve.metrics_path %q must start with '/'", c.Serve.MetricsPath))
	}
	return nil
}

func invalid(field, value string, allowed []string) error {
	return errors.New("V003").
		WithDetail(fmt.Sprintf("%s is %q", field, value)).
		WithSuggestion("Use one of " + strings.Join(allowed, ", "))
}

func required(field, backend string) error {
	return errors.New("V003").
		WithDetail(fmt.Sprintf("%s is required for the %s backend", field, backend))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// SaveTo writes the configuration to path in the format its extension names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(c)
		data = []byte(b.String())
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		return errors.New("V005").WithDetail("Cannot write " + path)
	}
	if err != nil {
		return errors.New("V002").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("V002").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the file the configuration was loaded from, or "" for
// defaults.
func (c *Config) Path() string {
	return c.configPath
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
