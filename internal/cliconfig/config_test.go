package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/pulseship/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SamplingRate != 128 {
		t.Errorf("SamplingRate = %v, want 128", cfg.SamplingRate)
	}
	if cfg.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout = %v, want 3s", cfg.ConnectTimeout)
	}
	if cfg.SettlingDelay != time.Second {
		t.Errorf("SettlingDelay = %v, want 1s", cfg.SettlingDelay)
	}
	if cfg.Sink != SinkLog {
		t.Errorf("Sink = %v, want %v", cfg.Sink, SinkLog)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
	if cfg.Version() != domain.HardwareShimmer3 {
		t.Errorf("Version() = %v, want shimmer3", cfg.Version())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero settling delay", mutate: func(c *Config) { c.SettlingDelay = 0 }},
		{name: "upper-case sink", mutate: func(c *Config) { c.Sink = "HTTP"; c.SinkURL = "http://localhost" }},
		{name: "empty sink falls back to log", mutate: func(c *Config) { c.Sink = "" }},
		{name: "shimmer2r", mutate: func(c *Config) { c.HardwareVersion = "Shimmer2R" }},
		{name: "zero sampling rate", mutate: func(c *Config) { c.SamplingRate = 0 }, wantErr: true},
		{name: "zero baud rate", mutate: func(c *Config) { c.BaudRate = 0 }, wantErr: true},
		{name: "zero connect timeout", mutate: func(c *Config) { c.ConnectTimeout = 0 }, wantErr: true},
		{name: "negative settling delay", mutate: func(c *Config) { c.SettlingDelay = -time.Second }, wantErr: true},
		{name: "negative wait", mutate: func(c *Config) { c.WaitForPorts = -time.Second }, wantErr: true},
		{name: "unknown hardware", mutate: func(c *Config) { c.HardwareVersion = "shimmer9" }, wantErr: true},
		{name: "unknown sink", mutate: func(c *Config) { c.Sink = "kafka" }, wantErr: true},
		{name: "network sink without url", mutate: func(c *Config) { c.Sink = SinkNATS }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_ValidateNormalizes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sink = "Redis"
	cfg.SinkURL = "redis://localhost:6379"
	cfg.HardwareVersion = "SHIMMER2R"
	cfg.LogLevel = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Sink != SinkRedis {
		t.Errorf("Sink = %q, want %q", cfg.Sink, SinkRedis)
	}
	if cfg.Version() != domain.HardwareShimmer2R {
		t.Errorf("Version() = %v, want shimmer2r", cfg.Version())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}
