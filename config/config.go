package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"go.uber.org/multierr"

	"github.com/attachsizer/geometry"
	"github.com/attachsizer/metadata"
	"github.com/attachsizer/resolver"
)

// Storage drivers used to look up legacy thumbnails.
const (
	StorageNone = "none"
	StorageS3   = "s3"
	StorageHTTP = "http"
)

type (
	// ServerConfig describes HTTP listener.
	ServerConfig struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	}

	// DatabaseConfig holds postgres connection settings, PG* variables win.
	DatabaseConfig struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	}

	// UploadsConfig tells where attached files live and where they are served from.
	UploadsConfig struct {
		BaseDir string `yaml:"base_dir"`
		BaseURL string `yaml:"base_url"`
		Marker  string `yaml:"marker"`
	}

	// MetadataConfig selects stored metadata encoding.
	MetadataConfig struct {
		Format metadata.Format `yaml:"format"`
	}

	// StorageConfig selects where legacy thumbnails are looked up.
	StorageConfig struct {
		Driver string `yaml:"driver"`
		Bucket string `yaml:"bucket"`
		Region string `yaml:"region"`
	}

	// EditorConfig holds display limits per size name.
	EditorConfig struct {
		Thumbnail    geometry.Preset            `yaml:"thumbnail"`
		Medium       geometry.Preset            `yaml:"medium"`
		Large        geometry.Preset            `yaml:"large"`
		Additional   map[string]geometry.Preset `yaml:"additional"`
		ContentWidth int                        `yaml:"content_width"`
		Admin        bool                       `yaml:"admin"`
	}

	// SelectionConfig tunes size selection.
	SelectionConfig struct {
		Tolerance int `yaml:"tolerance"`
	}

	// Config is the service configuration.
	Config struct {
		Server    ServerConfig    `yaml:"server"`
		Database  DatabaseConfig  `yaml:"database"`
		Uploads   UploadsConfig   `yaml:"uploads"`
		Metadata  MetadataConfig  `yaml:"metadata"`
		Storage   StorageConfig   `yaml:"storage"`
		Editor    EditorConfig    `yaml:"editor"`
		Selection SelectionConfig `yaml:"selection"`
		Logging   LoggingConfig   `yaml:"logging"`
	}
)

// DefaultConfig returns configuration matching stock WordPress media settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		Uploads:  UploadsConfig{Marker: "wp-content/uploads"},
		Metadata: MetadataConfig{Format: metadata.JSON},
		Storage:  StorageConfig{Driver: StorageNone},
		Editor: EditorConfig{
			Thumbnail: geometry.Preset{Width: 150, Height: 150},
			Medium:    geometry.Preset{Width: 300, Height: 300},
			Large:     geometry.Preset{Width: 1024, Height: 1024},
		},
		Selection: SelectionConfig{Tolerance: resolver.DefaultTolerance},
		Logging:   LoggingConfig{Level: "normal"},
	}
}

// LoadConfiguration reads the configuration from the file at path on top of
// defaults. ${VAR} references are expanded from environment, PG* variables
// override database settings. Empty path gives defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg := DefaultConfig()
	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshalConfig([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}
	cfg.Database.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func unmarshalConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) applyEnv(getenv func(string) string) {
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"PGHOST", &c.Host},
		{"PGPORT", &c.Port},
		{"PGUSER", &c.User},
		{"PGPASSWORD", &c.Password},
		{"PGDBNAME", &c.Name},
		{"PGSSLMODE", &c.SSLMode},
	} {
		if s := getenv(v.name); s != "" {
			*v.dst = s
		}
	}
}

// DSN returns lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s "+
		"password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Validate reports every problem found in configuration.
func (c *Config) Validate() error {
	var err error
	if c.Server.Addr == "" {
		err = multierr.Append(err, errors.New("server.addr is required"))
	}
	if !c.Metadata.Format.Valid() {
		err = multierr.Append(err, fmt.Errorf("metadata.format %q: %w", c.Metadata.Format, metadata.ErrUnknownFormat))
	}
	switch c.Storage.Driver {
	case StorageNone, StorageHTTP:
	case StorageS3:
		if c.Storage.Bucket == "" {
			err = multierr.Append(err, errors.New("storage.bucket is required for s3 driver"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("storage.driver %q must be one of none, s3, http", c.Storage.Driver))
	}
	if c.Selection.Tolerance < 0 {
		err = multierr.Append(err, errors.New("selection.tolerance can't be negative"))
	}
	if c.Editor.ContentWidth < 0 {
		err = multierr.Append(err, errors.New("editor.content_width can't be negative"))
	}
	for name, p := range map[string]geometry.Preset{
		"thumbnail": c.Editor.Thumbnail,
		"medium":    c.Editor.Medium,
		"large":     c.Editor.Large,
	} {
		if p.Width < 0 || p.Height < 0 {
			err = multierr.Append(err, fmt.Errorf("editor.%s can't have negative dimensions", name))
		}
	}
	for name, p := range c.Editor.Additional {
		if p.Width < 0 || p.Height < 0 {
			err = multierr.Append(err, fmt.Errorf("editor.additional.%s can't have negative dimensions", name))
		}
	}
	switch c.Logging.Level {
	case "none", "normal", "debug":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level %q must be one of none, normal, debug", c.Logging.Level))
	}
	return err
}

// EditorLimits returns display limits configured for editor.
func (c *Config) EditorLimits() geometry.Editor {
	return geometry.Editor{
		Thumbnail:    c.Editor.Thumbnail,
		Medium:       c.Editor.Medium,
		Large:        c.Editor.Large,
		Additional:   c.Editor.Additional,
		ContentWidth: c.Editor.ContentWidth,
		Admin:        c.Editor.Admin,
	}
}

// ResolverOptions returns resolver options described by configuration.
func (c *Config) ResolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithEditor(c.EditorLimits()),
		resolver.WithTolerance(c.Selection.Tolerance),
		resolver.WithFormat(c.Metadata.Format),
		resolver.WithUploads(resolver.Uploads{
			BaseDir: c.Uploads.BaseDir,
			BaseURL: c.Uploads.BaseURL,
			Marker:  c.Uploads.Marker,
		}),
	}
}
