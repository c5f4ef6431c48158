package pipeline

import (
	"context"
	"fmt"

	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/metrics"
	"github.com/bft-labs/pulseship/internal/ports"
)

// Publisher pushes one raw GSR value per frame to the sink. A blocking sink
// stalls frame handling for as long as Push blocks.
type Publisher struct {
	sink    ports.Sink
	metrics *metrics.Metrics
	sample  []float64
}

// NewPublisher creates a publisher for sink. m may be nil.
func NewPublisher(sink ports.Sink, m *metrics.Metrics) *Publisher {
	return &Publisher{sink: sink, metrics: m, sample: make([]float64, 1)}
}

// Publish pushes v. Errors wrap domain.ErrSinkPush.
func (p *Publisher) Publish(ctx context.Context, v float64) error {
	p.sample[0] = v
	err := p.sink.Push(ctx, p.sample)
	p.metrics.SinkPush(err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSinkPush, err)
	}
	return nil
}

// Outlet identity for the raw GSR stream.
const (
	GSRStreamName     = "ShimmerGSR"
	GSRStreamType     = "GSR"
	GSRStreamSourceID = "shimmer3gsr"
)

// GSRStream describes the raw GSR outlet at the given sampling rate.
func GSRStream(rate float64) ports.StreamInfo {
	return ports.StreamInfo{
		Name:         GSRStreamName,
		Type:         GSRStreamType,
		ChannelCount: 1,
		NominalRate:  rate,
		Format:       "double",
		SourceID:     GSRStreamSourceID,
	}
}
