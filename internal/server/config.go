package server

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/mortgage-affordability/internal/config"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. MORTGAGE_SERVER_ADDRESS.
const envPrefix = "MORTGAGE_SERVER"

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address         string               `yaml:"address"`
	MaxRequestSize  string               `yaml:"maxRequestSize"`
	ReadTimeout     time.Duration        `yaml:"readTimeout"`
	WriteTimeout    time.Duration        `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration        `yaml:"shutdownTimeout"`
	Logging         config.LoggingConfig `yaml:"logging"`
	requestSize     int64
}

// LoadConfig reads the server configuration from the YAML file at path and
// applies MORTGAGE_SERVER_* environment overrides. A missing file, or an
// empty path, leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			v.SetConfigType("yml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("address", constants.DefaultServerAddress)
	v.SetDefault("maxRequestSize", strconv.FormatInt(constants.DefaultMaxRequestSizeBytes, 10))
	v.SetDefault("readTimeout", defaultReadTimeout)
	v.SetDefault("writeTimeout", defaultWriteTimeout)
	v.SetDefault("shutdownTimeout", defaultShutdownTimeout)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	return v
}

// RequestSizeBytes returns the request body limit in bytes.
func (c *Config) RequestSizeBytes() int64 {
	return c.requestSize
}

// SetRequestSizeBytes replaces the request body limit. Non-positive sizes are ignored.
func (c *Config) SetRequestSizeBytes(size int64) {
	if size <= 0 {
		return
	}
	c.requestSize = size
	c.MaxRequestSize = strconv.FormatInt(size, 10)
}

// normalize restores defaults that a file or the environment blanked out
// and resolves the request size.
func (c *Config) normalize() error {
	if strings.TrimSpace(c.Address) == "" {
		c.Address = constants.DefaultServerAddress
	}
	for _, timeout := range []struct {
		value    *time.Duration
		fallback time.Duration
	}{
		{&c.ReadTimeout, defaultReadTimeout},
		{&c.WriteTimeout, defaultWriteTimeout},
		{&c.ShutdownTimeout, defaultShutdownTimeout},
	} {
		if *timeout.value <= 0 {
			*timeout.value = timeout.fallback
		}
	}

	size, err := ParseSize(c.MaxRequestSize)
	if err != nil {
		return fmt.Errorf("invalid maxRequestSize: %w", err)
	}
	if size == 0 {
		size = constants.DefaultMaxRequestSizeBytes
	}
	c.requestSize = size
	return nil
}

// sizeUnits are matched in order, so two-letter suffixes come first.
var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"B", 1},
}

// ParseSize reads a byte count such as "65536", "256K" or "10MB". Units are
// binary and case-insensitive; an empty value yields the default limit.
func ParseSize(value string) (int64, error) {
	text := strings.ToUpper(strings.TrimSpace(value))
	if text == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	factor := int64(1)
	for _, unit := range sizeUnits {
		if number, ok := strings.CutSuffix(text, unit.suffix); ok {
			text, factor = strings.TrimSpace(number), unit.factor
			break
		}
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return n * factor, nil
}
