package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Sink kinds.
const (
	SinkLog   = "log"
	SinkHTTP  = "http"
	SinkNATS  = "nats"
	SinkMQTT  = "mqtt"
	SinkRedis = "redis"
)

// PortSim selects the built-in simulated sensor.
const PortSim = "sim"

// Config holds CLI configuration for pulseship.
type Config struct {
	// Port pins a single endpoint. Empty scans every serial port.
	Port          string
	PortFilterVID string
	BaudRate      int

	ConnectTimeout time.Duration
	SettlingDelay  time.Duration
	WaitForPorts   time.Duration

	SamplingRate    float64
	HardwareVersion string

	Sink        string
	SinkURL     string
	SinkSubject string
	SinkAuthKey string

	MetricsAddr string
	LogLevel    string
	LogFile     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaudRate:        115200,
		ConnectTimeout:  3 * time.Second,
		SettlingDelay:   time.Second,
		SamplingRate:    128,
		HardwareVersion: domain.HardwareShimmer3.String(),
		Sink:            SinkLog,
		LogLevel:        zerolog.InfoLevel.String(),
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.SamplingRate <= 0 {
		return fmt.Errorf("%w: sampling rate must be positive", domain.ErrInvalidConfig)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be positive", domain.ErrInvalidConfig)
	}
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.SettlingDelay < 0 {
		return fmt.Errorf("%w: settling delay must not be negative", domain.ErrInvalidConfig)
	}
	if c.WaitForPorts < 0 {
		return fmt.Errorf("%w: wait-for-ports must not be negative", domain.ErrInvalidConfig)
	}

	c.HardwareVersion = strings.ToLower(c.HardwareVersion)
	if _, ok := domain.ParseHardwareVersion(c.HardwareVersion); !ok {
		return fmt.Errorf("%w: unknown hardware version %q", domain.ErrInvalidConfig, c.HardwareVersion)
	}

	c.Sink = strings.ToLower(c.Sink)
	if c.Sink == "" {
		c.Sink = SinkLog
	}
	switch c.Sink {
	case SinkLog:
	case SinkHTTP, SinkNATS, SinkMQTT, SinkRedis:
		if c.SinkURL == "" {
			return fmt.Errorf("%w: sink %s requires sink-url", domain.ErrInvalidConfig, c.Sink)
		}
	default:
		return fmt.Errorf("%w: unknown sink %q", domain.ErrInvalidConfig, c.Sink)
	}

	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// Version returns the parsed hardware version. Call after Validate.
func (c *Config) Version() domain.HardwareVersion {
	v, _ := domain.ParseHardwareVersion(c.HardwareVersion)
	return v
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}
