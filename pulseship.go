// Package pulseship acquires galvanic skin response and photoplethysmogram
// data from a Shimmer sensor, estimates heart rate from the PPG signal and
// publishes raw GSR samples to a telemetry sink.
//
// Example usage:
//
//	cfg := pulseship.DefaultConfig()
//	cfg.Sink = "nats"
//	cfg.SinkURL = "nats://localhost:4222"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := pulseship.Run(ctx, cfg); err != nil {
//	    log.Fatal(err)
//	}
package pulseship

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/pulseship/internal/adapters/log"
	"github.com/bft-labs/pulseship/internal/app"
	"github.com/bft-labs/pulseship/internal/cliconfig"
	"github.com/bft-labs/pulseship/internal/domain"
)

// Config holds the acquisition settings.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// Errors returned by Run.
var (
	ErrNoDeviceFound     = domain.ErrNoDeviceFound
	ErrChannelResolution = domain.ErrChannelResolution
	ErrSinkPush          = domain.ErrSinkPush
	ErrInvalidConfig     = domain.ErrInvalidConfig
)

// DefaultConfig returns a Config that scans every serial port and logs
// samples.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Run validates cfg, finds the sensor and streams until ctx is cancelled or
// the session fails. Status lines go to stdout, logs to stderr.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	zl, closer, err := cliconfig.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	r := app.NewRunner(app.ConfigFrom(cfg),
		app.WithLogger(logAdapter.NewZerologAdapterWithLogger(zl)),
		app.WithZerolog(zl),
		app.WithOutput(os.Stdout),
	)
	return r.Run(ctx)
}

// Logger returns the bootstrap zerolog logger.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}
