package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/metrics"
	"github.com/bft-labs/pulseship/internal/ports"
)

// State is the mutable per-session pipeline data.
type State struct {
	Indexer *Indexer
	Chain   *Chain
	Count   uint64
}

// Pipeline holds the collaborators shared by every frame.
type Pipeline struct {
	cfg       Config
	publisher *Publisher
	reporter  *Reporter
	logger    ports.Logger
	metrics   *metrics.Metrics
}

// New creates a pipeline that publishes to sink and reports to out.
// m may be nil.
func New(cfg Config, sink ports.Sink, out io.Writer, logger ports.Logger, m *metrics.Metrics) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		publisher: NewPublisher(sink, m),
		reporter:  NewReporter(out, cfg.SamplingRate),
		logger:    logger,
		metrics:   m,
	}, nil
}

// NewState returns fresh per-session state. version is queried once, on the
// first frame, to pick the PPG channel.
func (p *Pipeline) NewState(version func() domain.HardwareVersion) (*State, error) {
	chain, err := NewChain(p.cfg)
	if err != nil {
		return nil, err
	}
	return &State{Indexer: NewIndexer(version), Chain: chain}, nil
}

// Handle processes one frame. Any returned error is fatal for the session.
func (p *Pipeline) Handle(ctx context.Context, st *State, f *domain.Frame) error {
	first := !st.Indexer.Resolved()
	ix, err := st.Indexer.Indices(f)
	if err != nil {
		return err
	}
	if first {
		p.logger.Info("channels resolved",
			ports.Int("accel_x", ix.AccelX),
			ports.Int("gsr", ix.GSR),
			ports.Int("ppg", ix.PPG),
			ports.Int("timestamp", ix.Timestamp),
		)
	}

	s, err := ix.Extract(f)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, s.GSR.Value); err != nil {
		return err
	}

	_, bpm := st.Chain.Process(s.PPG.Value, s.Timestamp.Value)

	if err := p.reporter.Report(st.Count, s, bpm); err != nil {
		return fmt.Errorf("status report: %w", err)
	}
	st.Count++
	p.metrics.FrameProcessed(bpm)
	return nil
}
