// Package server serves the estimate API and the embedded wizard page.
package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"gopkg.in/yaml.v3"
)

// DefaultShutdownTimeout bounds the graceful shutdown of the server.
const DefaultShutdownTimeout = 10 * time.Second

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxUploadSize   string               `yaml:"maxUploadSize"`
	ShutdownTimeout string               `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	uploadSizeBytes int64
	shutdownTimeout time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		MaxUploadSize:   strconv.FormatInt(constants.DefaultMaxUploadSizeBytes, 10),
		uploadSizeBytes: constants.DefaultMaxUploadSizeBytes,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UploadSizeBytes returns the configured request body limit in bytes.
func (c *Config) UploadSizeBytes() int64 {
	return c.uploadSizeBytes
}

// SetUploadSizeBytes overrides the configured request body limit.
func (c *Config) SetUploadSizeBytes(size int64) {
	if size > 0 {
		c.uploadSizeBytes = size
		c.MaxUploadSize = strconv.FormatInt(size, 10)
	}
}

// ShutdownTimeoutDuration returns how long in-flight requests get on shutdown.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return c.shutdownTimeout
}

func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}

	c.shutdownTimeout = DefaultShutdownTimeout
	if s := strings.TrimSpace(c.ShutdownTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
		}
		if d > 0 {
			c.shutdownTimeout = d
		}
	}

	bytes, err := ParseSize(c.MaxUploadSize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxUploadSizeBytes
	}
	c.uploadSizeBytes = bytes
	c.MaxUploadSize = strconv.FormatInt(bytes, 10)
	return nil
}

var sizeUnits = map[string]int64{
	"":   1,
	"B":  1,
	"K":  1 << 10,
	"KB": 1 << 10,
	"M":  1 << 20,
	"MB": 1 << 20,
	"G":  1 << 30,
	"GB": 1 << 30,
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "1M") into
// bytes. An empty string gives the default request body limit.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	split := strings.LastIndexFunc(upper, unicode.IsDigit) + 1
	if split == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(strings.TrimSpace(upper[:split]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}
	multiplier, ok := sizeUnits[strings.TrimSpace(upper[split:])]
	if !ok {
		return 0, fmt.Errorf("unsupported size unit %q", strings.TrimSpace(upper[split:]))
	}

	if n > 0 && n > (1<<63-1)/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
