package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"

	"github.com/iryonetwork/patient-records/storage/records"
)

const (
	StoreTypeFile = "file"
	StoreTypeBolt = "bolt"
)

type Config struct {
	APIAddr        string        `env:"API_ADDR" envDefault:"localhost:8000"`
	StoreType      string        `env:"STORE_TYPE" envDefault:"file"`
	DataDir        string        `env:"DATA_DIR"`
	DataPath       string        `env:"DATA_PATH" envDefault:"patients_data.json"`
	BoltPath       string        `env:"BOLT_PATH" envDefault:"patients.db"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	Debug          bool          `env:"DEBUG" envDefault:"1"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"console"`
	LogOutput      string        `env:"LOG_OUTPUT" envDefault:"stdout"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.StoreType != StoreTypeFile && cfg.StoreType != StoreTypeBolt {
		return nil, fmt.Errorf("unknown STORE_TYPE %q", cfg.StoreType)
	}
	return cfg, nil
}

// Source returns the record source selected by StoreType.
func (c *Config) Source() (records.Source, error) {
	switch c.StoreType {
	case StoreTypeBolt:
		path, err := c.Resolve(c.BoltPath)
		if err != nil {
			return nil, err
		}
		return records.NewBoltSource(path), nil
	case StoreTypeFile, "":
		path, err := c.Resolve(c.DataPath)
		if err != nil {
			return nil, err
		}
		return records.NewFileSource(path), nil
	}
	return nil, fmt.Errorf("unknown store type %q", c.StoreType)
}

// Resolve makes p absolute. Relative paths are taken from DataDir, or from
// the directory of the running executable when DataDir is empty.
func (c *Config) Resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	dir := c.DataDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to locate executable: %v", err)
		}
		dir = filepath.Dir(exe)
	}
	return filepath.Join(dir, p), nil
}
