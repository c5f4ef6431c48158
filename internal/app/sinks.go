package app

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/rs/zerolog"

	httpAdapter "github.com/bft-labs/pulseship/internal/adapters/http"
	logAdapter "github.com/bft-labs/pulseship/internal/adapters/log"
	mqttAdapter "github.com/bft-labs/pulseship/internal/adapters/mqtt"
	natsAdapter "github.com/bft-labs/pulseship/internal/adapters/nats"
	redisAdapter "github.com/bft-labs/pulseship/internal/adapters/redis"
	"github.com/bft-labs/pulseship/internal/cliconfig"
	"github.com/bft-labs/pulseship/internal/ports"
)

// sinkDialAttempts bounds connection retries for network sinks.
const sinkDialAttempts = 3

// SinkConfig selects and addresses the telemetry sink.
type SinkConfig struct {
	Kind    string
	URL     string
	Subject string
	AuthKey string
	Timeout time.Duration
}

// NewSink builds the configured sink. Network sinks are retried with
// backoff before giving up.
func NewSink(ctx context.Context, cfg SinkConfig, info ports.StreamInfo, zl zerolog.Logger, logger ports.Logger) (ports.Sink, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	var dial func() (ports.Sink, error)
	switch cfg.Kind {
	case cliconfig.SinkLog, "":
		return logAdapter.NewSink(zl, info), nil
	case cliconfig.SinkHTTP:
		client := &nethttp.Client{Timeout: cfg.Timeout}
		return httpAdapter.NewSampleSender(client, cfg.URL, cfg.AuthKey, info, logger), nil
	case cliconfig.SinkNATS:
		dial = func() (ports.Sink, error) {
			return natsAdapter.Dial(cfg.URL, cfg.Subject, cfg.AuthKey, info, logger)
		}
	case cliconfig.SinkMQTT:
		dial = func() (ports.Sink, error) {
			return mqttAdapter.Dial(cfg.URL, cfg.Subject, cfg.AuthKey, info, logger)
		}
	case cliconfig.SinkRedis:
		dial = func() (ports.Sink, error) {
			dctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
			return redisAdapter.Dial(dctx, cfg.URL, cfg.Subject, cfg.AuthKey, info, logger)
		}
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Kind)
	}

	var sink ports.Sink
	err := retry(ctx, sinkDialAttempts, newBackoff(DefaultBackoffInitial, DefaultBackoffMax), func() error {
		s, err := dial()
		if err != nil {
			logger.Warn("sink connection failed", ports.String("sink", cfg.Kind), ports.Err(err))
			return err
		}
		sink = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s sink: %w", cfg.Kind, err)
	}
	return sink, nil
}
