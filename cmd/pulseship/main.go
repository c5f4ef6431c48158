package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/pulseship/internal/adapters/log"
	"github.com/bft-labs/pulseship/internal/app"
	"github.com/bft-labs/pulseship/internal/cliconfig"
	"github.com/bft-labs/pulseship/internal/domain"
)

const helpDescription = `
Acquire GSR and PPG from a Shimmer sensor, estimate heart rate and publish
raw GSR samples.

Highlights:
  - Finds the sensor by trying each serial port in order; no flags required.
  - Low-pass 5 Hz then high-pass 0.5 Hz filtering before heart-rate estimation.
  - Publishes to a log, HTTP, NATS, MQTT or Redis Streams sink.
  - Configure via file ($HOME/.pulseship/config.toml), PULSESHIP_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  pulseship
  pulseship --port /dev/ttyUSB0 --sink nats --sink-url nats://localhost:4222
  pulseship --port sim --metrics-addr :9102
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "pulseship",
		Short:         "Stream GSR and heart rate from a Shimmer sensor",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// PULSESHIP_* override the file but not explicit flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			zl, closer, err := cliconfig.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()
			log = zl

			logCfg := cfg
			if len(logCfg.SinkAuthKey) > 0 {
				logCfg.SinkAuthKey = "*****"
			}
			log.Info().Interface("config", logCfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := app.NewRunner(app.ConfigFrom(cfg),
				app.WithLogger(logAdapter.NewZerologAdapterWithLogger(zl)),
				app.WithZerolog(zl),
				app.WithOutput(cmd.OutOrStdout()),
			)
			if err := r.Run(ctx); err != nil {
				return err
			}
			log.Info().Msg("stopped")
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.pulseship/config.toml)")
	root.Flags().StringVar(&cfg.Port, "port", cfg.Port, `serial port to use ("sim" for the simulator; default: scan all)`)
	root.Flags().StringVar(&cfg.PortFilterVID, "port-filter-vid", cfg.PortFilterVID, "only scan USB ports with this vendor id")
	root.Flags().IntVar(&cfg.BaudRate, "baud-rate", cfg.BaudRate, "serial baud rate")
	root.Flags().DurationVar(&cfg.ConnectTimeout, "connect-timeout", cfg.ConnectTimeout, "per-port connection timeout")
	root.Flags().DurationVar(&cfg.SettlingDelay, "settling-delay", cfg.SettlingDelay, "delay between connect and start streaming")
	root.Flags().DurationVar(&cfg.WaitForPorts, "wait-for-ports", cfg.WaitForPorts, "wait this long for a serial port to appear when none exist")
	root.Flags().Float64Var(&cfg.SamplingRate, "sampling-rate", cfg.SamplingRate, "sensor sampling rate in Hz")
	root.Flags().StringVar(&cfg.HardwareVersion, "hardware-version", cfg.HardwareVersion, "sensor hardware (shimmer3, shimmer2r)")

	root.Flags().StringVar(&cfg.Sink, "sink", cfg.Sink, "telemetry sink (log, http, nats, mqtt, redis)")
	root.Flags().StringVar(&cfg.SinkURL, "sink-url", cfg.SinkURL, "sink endpoint URL")
	root.Flags().StringVar(&cfg.SinkSubject, "sink-subject", cfg.SinkSubject, "NATS subject, MQTT topic or Redis stream key")
	root.Flags().StringVar(&cfg.SinkAuthKey, "sink-auth-key", cfg.SinkAuthKey, "sink credential (bearer token, NATS token or password)")

	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "also write JSON logs to this rotated file")

	if err := root.Execute(); err != nil {
		if errors.Is(err, domain.ErrNoDeviceFound) {
			log.Error().Err(err).Msg("no sensor found")
		} else {
			log.Error().Err(err).Msg("pulseship")
		}
		os.Exit(1)
	}
}
