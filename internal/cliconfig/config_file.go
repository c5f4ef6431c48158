package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port            string  `toml:"port"`
	PortFilterVID   string  `toml:"port_filter_vid"`
	BaudRate        int     `toml:"baud_rate"`
	ConnectTimeout  string  `toml:"connect_timeout"`
	SettlingDelay   string  `toml:"settling_delay"`
	WaitForPorts    string  `toml:"wait_for_ports"`
	SamplingRate    float64 `toml:"sampling_rate"`
	HardwareVersion string  `toml:"hardware_version"`
	Sink            string  `toml:"sink"`
	SinkURL         string  `toml:"sink_url"`
	SinkSubject     string  `toml:"sink_subject"`
	SinkAuthKey     string  `toml:"sink_auth_key"`
	MetricsAddr     string  `toml:"metrics_addr"`
	LogLevel        string  `toml:"log_level"`
	LogFile         string  `toml:"log_file"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.pulseship/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pulseship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", fc.Port, &cfg.Port)
	s.setString("port-filter-vid", fc.PortFilterVID, &cfg.PortFilterVID)
	s.setString("hardware-version", fc.HardwareVersion, &cfg.HardwareVersion)
	s.setString("sink", fc.Sink, &cfg.Sink)
	s.setString("sink-url", fc.SinkURL, &cfg.SinkURL)
	s.setString("sink-subject", fc.SinkSubject, &cfg.SinkSubject)
	s.setString("sink-auth-key", fc.SinkAuthKey, &cfg.SinkAuthKey)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-file", fc.LogFile, &cfg.LogFile)

	if err := s.setDuration("connect-timeout", fc.ConnectTimeout, &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("settling-delay", fc.SettlingDelay, &cfg.SettlingDelay); err != nil {
		return err
	}
	if err := s.setDuration("wait-for-ports", fc.WaitForPorts, &cfg.WaitForPorts); err != nil {
		return err
	}

	s.setInt("baud-rate", fc.BaudRate, &cfg.BaudRate)
	s.setFloat("sampling-rate", fc.SamplingRate, &cfg.SamplingRate)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
