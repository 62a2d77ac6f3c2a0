package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/vstore/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	want := &Config{
		LogLevel: DefaultLogLevel,
		Codec:    DefaultCodec,
		Storage: StorageConfig{
			Backend:  BackendFile,
			Dir:      DefaultDir,
			DSN:      DefaultDSN,
			Table:    DefaultTable,
			S3Prefix: DefaultS3Prefix,
		},
		Serve: ServeConfig{Addr: DefaultAddr, MetricsPath: DefaultMetricsPath},
	}
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("New() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty for defaults", cfg.Path())
	}
	if cfg.Storage.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, DefaultBackend)
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vstore.toml", `
log_level = "debug"
codec = "yaml"

[storage]
backend = "sqlite"
dsn = "state.db"
prefix = "app:"

[serve]
addr = "127.0.0.1:9090"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.LogLevel != "debug" || cfg.Codec != "yaml" {
		t.Errorf("LogLevel/Codec = %q/%q", cfg.LogLevel, cfg.Codec)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.DSN != "state.db" || cfg.Storage.Prefix != "app:" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Table != DefaultTable {
		t.Errorf("Table = %q, want default %q", cfg.Storage.Table, DefaultTable)
	}
	if cfg.Serve.Addr != "127.0.0.1:9090" || cfg.Serve.MetricsPath != DefaultMetricsPath {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vstore.yaml", `
storage:
  backend: s3
  bucket: prefs
  region: eu-west-1
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Backend != BackendS3 || cfg.Storage.Bucket != "prefs" || cfg.Storage.Region != "eu-west-1" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.S3Prefix != DefaultS3Prefix {
		t.Errorf("S3Prefix = %q, want default", cfg.Storage.S3Prefix)
	}
}

func TestLoadPrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vstore.yaml", "log_level: warn\n")
	writeFile(t, dir, "vstore.toml", "log_level = \"error\"\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want the vstore.toml value", cfg.LogLevel)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "vstore.yml", "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(empty) error = %v", err)
	}
	if cfg.Codec != DefaultCodec {
		t.Errorf("Codec = %q, want default", cfg.Codec)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantLine int
	}{
		{name: "missing", file: "", wantCode: "V001"},
		{name: "toml syntax", file: "bad.toml", content: "log_level = \"info\"\n\n[storage]\ndir = ./state\n", wantCode: "V002", wantLine: 4},
		{name: "toml unknown key", file: "extra.toml", content: "colour = \"red\"\n", wantCode: "V003"},
		{name: "yaml syntax", file: "bad.yaml", content: "storage: [unclosed\n", wantCode: "V002"},
		{name: "yaml unknown key", file: "extra.yaml", content: "storage:\n  driver: file\n", wantCode: "V002", wantLine: 2},
		{name: "extension", file: "vstore.json", content: "{}", wantCode: "V005"},
		{name: "backend", file: "backend.toml", content: "[storage]\nbackend = \"etcd\"\n", wantCode: "V004"},
		{name: "log level", file: "level.toml", content: "log_level = \"trace\"\n", wantCode: "V003"},
		{name: "s3 without bucket", file: "s3.toml", content: "[storage]\nbackend = \"s3\"\n", wantCode: "V003"},
		{name: "remote without url", file: "remote.yaml", content: "storage:\n  backend: remote\n", wantCode: "V003"},
		{name: "metrics path", file: "metrics.toml", content: "[serve]\nmetrics_path = \"metrics\"\n", wantCode: "V003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "absent.toml")
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.content)
			}

			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("LoadFile() succeeded, want an error")
			}
			if got := errorCode(err); got != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
			if tt.wantLine > 0 {
				var e *errors.Error
				stderrors.As(err, &e)
				if e.Location == nil || e.Location.Line != tt.wantLine {
					t.Errorf("Location = %v, want line %d", e.Location, tt.wantLine)
				}
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"vstore.toml", "vstore.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Storage.Backend = BackendRemote
			cfg.Storage.URL = "http://localhost:8080"
			cfg.Storage.Prefix = "team:"

			path := filepath.Join(t.TempDir(), name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q after SaveTo", cfg.Path())
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if diff := cmp.Diff(cfg, loaded, cmpopts.IgnoreUnexported(Config{})); diff != "" {
				t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
			}
		})
	}
}

func TestSaveToUnsupported(t *testing.T) {
	err := New().SaveTo(filepath.Join(t.TempDir(), "vstore.ini"))
	if errorCode(err) != "V005" {
		t.Errorf("SaveTo(.ini) error = %v, want V005", err)
	}
}

func TestParseErrorFormatting(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()

	path := writeFile(t, t.TempDir(), "vstore.toml", "[storage]\nbackend = file\n")
	_, err := LoadFile(path)

	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("err = %v, want *errors.Error", err)
	}
	if out := e.Format(); !strings.Contains(out, "backend = file") {
		t.Errorf("Format() should show the offending line:\n%s", out)
	}
}
