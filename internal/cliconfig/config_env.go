package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "PULSESHIP_"

func env(key string) string { return os.Getenv(EnvPrefix + key) }

// ApplyEnvConfig applies configuration from environment variables (PULSESHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("port", env("PORT"), &cfg.Port)
	s.setString("port-filter-vid", env("PORT_FILTER_VID"), &cfg.PortFilterVID)
	s.setString("hardware-version", env("HARDWARE_VERSION"), &cfg.HardwareVersion)
	s.setString("sink", env("SINK"), &cfg.Sink)
	s.setString("sink-url", env("SINK_URL"), &cfg.SinkURL)
	s.setString("sink-subject", env("SINK_SUBJECT"), &cfg.SinkSubject)
	s.setString("sink-auth-key", env("SINK_AUTH_KEY"), &cfg.SinkAuthKey)
	s.setString("metrics-addr", env("METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-file", env("LOG_FILE"), &cfg.LogFile)

	if err := s.setDuration("connect-timeout", env("CONNECT_TIMEOUT"), &cfg.ConnectTimeout); err != nil {
		return err
	}
	if err := s.setDuration("settling-delay", env("SETTLING_DELAY"), &cfg.SettlingDelay); err != nil {
		return err
	}
	if err := s.setDuration("wait-for-ports", env("WAIT_FOR_PORTS"), &cfg.WaitForPorts); err != nil {
		return err
	}

	if err := s.setIntFromString("baud-rate", env("BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setFloatFromString("sampling-rate", env("SAMPLING_RATE"), &cfg.SamplingRate); err != nil {
		return err
	}

	return nil
}
