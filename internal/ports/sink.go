package ports

import (
	"context"
	"time"
)

// Sink accepts fixed-arity numeric samples. It is push-only: there is no
// acknowledgment and no backpressure signal. Implementations that block
// stall the frame pipeline for the duration of the call.
type Sink interface {
	// Push sends one sample. A non-nil error is fatal to the pipeline.
	// The slice is reused by the caller and must not be retained.
	Push(ctx context.Context, sample []float64) error

	// Close releases the sink's connection.
	Close() error
}

// StreamInfo describes the outlet a sink publishes to.
type StreamInfo struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	ChannelCount int     `json:"channel_count"`
	NominalRate  float64 `json:"nominal_rate"`
	Format       string  `json:"format"`
	SourceID     string  `json:"source_id"`
}

// SampleMessage is the wire form of one pushed sample.
type SampleMessage struct {
	Stream    string    `json:"stream"`
	SourceID  string    `json:"source_id"`
	Timestamp time.Time `json:"timestamp"`
	Sample    []float64 `json:"sample"`
}

// NewSampleMessage stamps sample with the outlet identity and the current
// time. The sample is copied.
func NewSampleMessage(info StreamInfo, sample []float64) SampleMessage {
	return SampleMessage{
		Stream:    info.Name,
		SourceID:  info.SourceID,
		Timestamp: time.Now().UTC(),
		Sample:    append([]float64(nil), sample...),
	}
}
