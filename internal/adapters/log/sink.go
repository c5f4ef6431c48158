package log

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bft-labs/pulseship/internal/ports"
)

// Sink implements ports.Sink by writing each sample as a debug event.
type Sink struct {
	logger zerolog.Logger
	info   ports.StreamInfo
}

// NewSink creates a log sink for the outlet described by info.
func NewSink(logger zerolog.Logger, info ports.StreamInfo) *Sink {
	logger.Info().
		Str("stream", info.Name).
		Str("type", info.Type).
		Int("channels", info.ChannelCount).
		Float64("rate", info.NominalRate).
		Str("source_id", info.SourceID).
		Msg("log sink ready")
	return &Sink{logger: logger, info: info}
}

// Push never fails.
func (s *Sink) Push(_ context.Context, sample []float64) error {
	s.logger.Debug().
		Str("stream", s.info.Name).
		Floats64("sample", sample).
		Msg("sample")
	return nil
}

// Close is a no-op.
func (s *Sink) Close() error { return nil }
