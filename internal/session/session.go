// Package session owns an adopted sensor device: it dispatches the device's
// notifications, issues the delayed start-streaming command after a
// connection is confirmed, and hands data frames to the pipeline.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/metrics"
	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultSettlingDelay is the pause between a confirmed connection and the
// start-streaming command.
const DefaultSettlingDelay = time.Second

// FrameHandler consumes data frames. A returned error ends the session.
type FrameHandler interface {
	HandleFrame(ctx context.Context, f *domain.Frame) error
}

// FrameHandlerFunc adapts a function to FrameHandler.
type FrameHandlerFunc func(ctx context.Context, f *domain.Frame) error

// HandleFrame calls fn(ctx, f).
func (fn FrameHandlerFunc) HandleFrame(ctx context.Context, f *domain.Frame) error {
	return fn(ctx, f)
}

// Config holds session settings.
type Config struct {
	SettlingDelay time.Duration
	// Out receives the human-readable state messages. Nil discards them.
	Out io.Writer
}

// Session wraps one connected device.
type Session struct {
	id      string
	dev     ports.Device
	cfg     Config
	handler FrameHandler
	logger  ports.Logger
	metrics *metrics.Metrics

	state   atomic.Int32
	pending atomic.Bool
	closed  atomic.Bool
	startCh chan error

	mu    sync.Mutex
	timer *time.Timer
}

// New adopts dev. m may be nil.
func New(dev ports.Device, cfg Config, handler FrameHandler, logger ports.Logger, m *metrics.Metrics) *Session {
	if cfg.SettlingDelay < 0 {
		cfg.SettlingDelay = 0
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Session{
		id:      uuid.NewString(),
		dev:     dev,
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		metrics: m,
		startCh: make(chan error, 1),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Device returns the adopted device.
func (s *Session) Device() ports.Device { return s.dev }

// State returns the last state reported by the device.
func (s *Session) State() domain.DeviceState {
	return domain.DeviceState(s.state.Load())
}

// HardwareVersion queries the device's hardware generation.
func (s *Session) HardwareVersion() domain.HardwareVersion {
	return s.dev.HardwareVersion()
}

// Adopted records the Connected state that was observed while the device was
// still a scan candidate, which schedules the delayed start.
func (s *Session) Adopted() {
	s.onState(domain.StateConnected)
}

// Run dispatches device events until ctx is cancelled, the device's event
// channel closes, or a frame handler fails. Frames are handled one at a time
// in delivery order.
func (s *Session) Run(ctx context.Context) error {
	events := s.dev.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.startCh:
			return fmt.Errorf("start streaming: %w", err)
		case ev, ok := <-events:
			if !ok {
				s.logger.Info("device event stream closed", ports.String("session", s.id))
				return nil
			}
			if err := s.dispatch(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (s *Session) dispatch(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.StateChanged:
		s.onState(e.State)
	case domain.Notification:
		s.logger.Debug("device notification", ports.String("message", e.Message))
	case domain.DataFrame:
		return s.handler.HandleFrame(ctx, &e.Frame)
	default:
		s.logger.Warn("unknown device event", ports.Any("event", ev))
	}
	return nil
}

func (s *Session) onState(state domain.DeviceState) {
	s.state.Store(int32(state))
	s.metrics.StateChanged(state)
	s.logger.Info("device state",
		ports.String("session", s.id),
		ports.String("device", s.dev.Name()),
		ports.String("state", state.String()),
	)

	switch state {
	case domain.StateConnected:
		fmt.Fprintln(s.cfg.Out, "Shimmer is Connected")
		s.scheduleStart()
	case domain.StateConnecting:
		fmt.Fprintln(s.cfg.Out, "Establishing Connection to Shimmer Device")
	case domain.StateNone:
		fmt.Fprintln(s.cfg.Out, "Shimmer is Disconnected")
		s.cancelStart()
	case domain.StateStreaming:
		fmt.Fprintln(s.cfg.Out, "Shimmer is Streaming")
	}
}

// scheduleStart arms the delayed start unless one is pending or the device
// is already streaming.
func (s *Session) scheduleStart() {
	if s.closed.Load() {
		return
	}
	if !s.pending.CompareAndSwap(false, true) {
		s.logger.Debug("start already scheduled, ignoring duplicate connect")
		return
	}

	s.mu.Lock()
	s.timer = time.AfterFunc(s.cfg.SettlingDelay, s.fireStart)
	s.mu.Unlock()
}

// fireStart runs on the timer goroutine. It only touches atomics and the
// device, and reports failures through startCh.
func (s *Session) fireStart() {
	if s.closed.Load() || s.State() != domain.StateConnected {
		s.logger.Debug("skipping start streaming",
			ports.String("state", s.State().String()),
			ports.Bool("closed", s.closed.Load()),
		)
		s.pending.Store(false)
		return
	}

	s.logger.Info("start streaming", ports.String("device", s.dev.Name()))
	if err := s.dev.StartStreaming(); err != nil {
		s.pending.Store(false)
		select {
		case s.startCh <- err:
		default:
		}
	}
	// pending stays set until the device reports None, so a duplicate
	// Connected before Streaming arrives cannot issue a second start.
}

func (s *Session) cancelStart() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.pending.Store(false)
}

// Close cancels a pending start and disconnects the device.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.dev.Disconnect()
}
