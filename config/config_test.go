package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"

	"github.com/attachsizer/metadata"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Editor.Medium.Width != 300 || cfg.Editor.Large.Height != 1024 {
		t.Errorf("unexpected default editor sizes: %+v", cfg.Editor)
	}
	if cfg.Selection.Tolerance != 1 {
		t.Errorf("Tolerance = %d, want 1", cfg.Selection.Tolerance)
	}
	if cfg.Metadata.Format != metadata.JSON {
		t.Errorf("Format = %s, want json", cfg.Metadata.Format)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	t.Setenv("ATTACHSIZER_TEST_BUCKET", "media")
	t.Setenv("PGHOST", "db.internal")

	path := writeConfig(t, `server:
  addr: ":9000"
  read_timeout: 3s
database:
  host: localhost
  name: wordpress
uploads:
  base_dir: /var/www/uploads
  base_url: https://example.com/uploads
metadata:
  format: cbor
storage:
  driver: s3
  bucket: ${ATTACHSIZER_TEST_BUCKET}
editor:
  medium:
    width: 400
    height: 400
  additional:
    poster:
      width: 2000
      height: 1000
  content_width: 640
selection:
  tolerance: 2
logging:
  level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default", cfg.Server.WriteTimeout)
	}
	if cfg.Storage.Bucket != "media" {
		t.Errorf("Bucket = %q, want expanded value", cfg.Storage.Bucket)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("Host = %q, want PGHOST override", cfg.Database.Host)
	}
	if cfg.Database.Name != "wordpress" {
		t.Errorf("Name = %q, want wordpress", cfg.Database.Name)
	}
	if cfg.Metadata.Format != metadata.CBOR {
		t.Errorf("Format = %s, want cbor", cfg.Metadata.Format)
	}

	e := cfg.EditorLimits()
	if e.Medium.Width != 400 || e.Thumbnail.Width != 150 || e.ContentWidth != 640 {
		t.Errorf("unexpected editor limits: %+v", e)
	}
	if p, ok := e.Additional["poster"]; !ok || p.Width != 2000 {
		t.Errorf("expected poster preset, got %+v", e.Additional)
	}
	if len(cfg.ResolverOptions()) == 0 {
		t.Error("expected resolver options")
	}
}

func TestLoadConfiguration_UnknownField(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":80\"\n")
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metadata.Format = "xml"
	cfg.Storage.Driver = StorageS3
	cfg.Selection.Tolerance = -1
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Fatalf("expected 4 errors but got %d: %v", n, err)
	}
	if !strings.Contains(err.Error(), "storage.bucket") {
		t.Errorf("expected bucket error, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	expected := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if got := db.DSN(); got != expected {
		t.Fatalf("expected %q but got %q", expected, got)
	}
}

func TestPrepare(t *testing.T) {
	for _, level := range []string{"none", "normal", "debug"} {
		conf := LoggingConfig{Level: level}
		log, err := conf.Prepare()
		if err != nil {
			t.Fatalf("Prepare(%s) error = %v", level, err)
		}
		if log == nil {
			t.Fatalf("Prepare(%s) returned nil logger", level)
		}
	}
}
