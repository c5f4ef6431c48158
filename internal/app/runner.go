package app

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	logAdapter "github.com/bft-labs/pulseship/internal/adapters/log"
	serialAdapter "github.com/bft-labs/pulseship/internal/adapters/serial"
	"github.com/bft-labs/pulseship/internal/adapters/sim"
	"github.com/bft-labs/pulseship/internal/arbiter"
	"github.com/bft-labs/pulseship/internal/cliconfig"
	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/metrics"
	"github.com/bft-labs/pulseship/internal/pipeline"
	"github.com/bft-labs/pulseship/internal/ports"
	"github.com/bft-labs/pulseship/internal/session"
)

// Config contains everything the runner needs for one acquisition run.
type Config struct {
	// Port pins one endpoint; "sim" selects the simulator; empty scans.
	Port          string
	PortFilterVID string
	BaudRate      int

	ConnectTimeout time.Duration
	SettlingDelay  time.Duration
	WaitForPorts   time.Duration

	SamplingRate float64
	Version      domain.HardwareVersion

	Sink        SinkConfig
	MetricsAddr string
}

// ConfigFrom converts a validated CLI configuration.
func ConfigFrom(c cliconfig.Config) Config {
	return Config{
		Port:           c.Port,
		PortFilterVID:  c.PortFilterVID,
		BaudRate:       c.BaudRate,
		ConnectTimeout: c.ConnectTimeout,
		SettlingDelay:  c.SettlingDelay,
		WaitForPorts:   c.WaitForPorts,
		SamplingRate:   c.SamplingRate,
		Version:        c.Version(),
		Sink: SinkConfig{
			Kind:    c.Sink,
			URL:     c.SinkURL,
			Subject: c.SinkSubject,
			AuthKey: c.SinkAuthKey,
		},
		MetricsAddr: c.MetricsAddr,
	}
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(l ports.Logger) Option { return func(r *Runner) { r.logger = l } }

// WithZerolog sets the logger backing the log sink.
func WithZerolog(l zerolog.Logger) Option { return func(r *Runner) { r.zl = l } }

// WithOutput sets where state messages and status lines are written.
func WithOutput(w io.Writer) Option { return func(r *Runner) { r.out = w } }

// WithDevices replaces endpoint discovery and device construction.
func WithDevices(lister ports.PortLister, factory ports.DeviceFactory, waiter arbiter.PortWaiter) Option {
	return func(r *Runner) {
		r.lister, r.factory, r.waiter = lister, factory, waiter
	}
}

// WithSink uses sink instead of building one from Config.Sink.
func WithSink(s ports.Sink) Option { return func(r *Runner) { r.sink = s } }

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Runner) { r.metrics = m } }

// WithEmitter receives lifecycle transitions.
func WithEmitter(e EventEmitter) Option { return func(r *Runner) { r.emitter = e } }

// Runner wires discovery, the session and the frame pipeline for one run.
type Runner struct {
	cfg     Config
	logger  ports.Logger
	zl      zerolog.Logger
	out     io.Writer
	metrics *metrics.Metrics
	emitter EventEmitter

	lister  ports.PortLister
	factory ports.DeviceFactory
	waiter  arbiter.PortWaiter
	sink    ports.Sink

	lifecycle *Lifecycle
}

// NewRunner creates a runner.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		cfg: cfg,
		zl:  zerolog.Nop(),
		out: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logAdapter.NewNoopLogger()
	}
	if r.metrics == nil {
		r.metrics = metrics.New()
	}
	r.lifecycle = NewLifecycle(r.logger, r.emitter)
	if r.lister == nil {
		r.lister, r.factory, r.waiter = r.devices()
	}
	return r
}

// State returns the runner's lifecycle state.
func (r *Runner) State() State { return r.lifecycle.State() }

// Stop cancels a run in progress.
func (r *Runner) Stop() { r.lifecycle.Cancel() }

func (r *Runner) devices() (ports.PortLister, ports.DeviceFactory, arbiter.PortWaiter) {
	switch r.cfg.Port {
	case cliconfig.PortSim:
		simCfg := sim.DefaultConfig()
		simCfg.SamplingRate = r.cfg.SamplingRate
		simCfg.Version = r.cfg.Version
		return fixedPort(sim.PortName), func(string) (ports.Device, error) {
			return sim.New(simCfg), nil
		}, nil
	}

	serialCfg := serialAdapter.Config{BaudRate: r.cfg.BaudRate, Version: r.cfg.Version}
	factory := serialAdapter.Factory(serialCfg, r.logger)
	if r.cfg.Port != "" {
		return fixedPort(r.cfg.Port), factory, nil
	}
	return serialAdapter.NewLister(r.cfg.PortFilterVID), factory, serialAdapter.NewWatcher("", r.logger)
}

func fixedPort(name string) ports.PortLister {
	return ports.PortListerFunc(func(context.Context) ([]string, error) {
		return []string{name}, nil
	})
}

// Run scans for the sensor, adopts it and processes frames until ctx is
// cancelled or the session fails. Cancellation is a clean stop and returns
// nil. A failed scan returns an error wrapping domain.ErrNoDeviceFound.
func (r *Runner) Run(ctx context.Context) (err error) {
	if !r.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.lifecycle.SetCancel(cancel)

	if err := r.lifecycle.TransitionTo(StateStarting, "run"); err != nil {
		return err
	}
	defer func() {
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}()
	defer func() { r.finish(err) }()

	if r.cfg.MetricsAddr != "" {
		r.lifecycle.Go("metrics", func() error {
			r.logger.Info("serving metrics", ports.String("addr", r.cfg.MetricsAddr))
			return r.metrics.Serve(ctx, r.cfg.MetricsAddr)
		})
	}

	sink := r.sink
	if sink == nil {
		sink, err = NewSink(ctx, r.cfg.Sink, pipeline.GSRStream(r.cfg.SamplingRate), r.zl, r.logger)
		if err != nil {
			return err
		}
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			r.logger.Warn("closing sink", ports.Err(cerr))
		}
	}()

	pcfg := pipeline.DefaultConfig()
	pcfg.SamplingRate = r.cfg.SamplingRate
	p, err := pipeline.New(pcfg, sink, r.out, r.logger, r.metrics)
	if err != nil {
		return err
	}

	arb := arbiter.New(r.lister, r.factory, r.waiter, arbiter.Config{
		Timeout:      r.cfg.ConnectTimeout,
		WaitForPorts: r.cfg.WaitForPorts,
	}, r.logger, r.metrics)

	res, err := arb.Scan(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("device adopted",
		ports.String("port", res.Port),
		ports.Int("attempts", res.Attempts),
		ports.Duration("elapsed", res.Elapsed),
	)

	var sess *session.Session
	st, err := p.NewState(func() domain.HardwareVersion { return sess.HardwareVersion() })
	if err != nil {
		_ = res.Device.Disconnect()
		return err
	}
	sess = session.New(res.Device, session.Config{
		SettlingDelay: r.cfg.SettlingDelay,
		Out:           r.out,
	}, session.FrameHandlerFunc(func(ctx context.Context, f *domain.Frame) error {
		return p.Handle(ctx, st, f)
	}), r.logger, r.metrics)
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.logger.Debug("closing device", ports.Err(cerr))
		}
	}()

	sess.Adopted()
	if err := r.lifecycle.TransitionTo(StateRunning, "device adopted"); err != nil {
		return err
	}
	r.logger.Info("session started", ports.String("session", sess.ID()), ports.String("port", res.Port))

	return sess.Run(ctx)
}

// finish records the outcome of a run and waits for background workers.
// A run ended by cancellation is reported as a clean stop.
func (r *Runner) finish(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		r.lifecycle.Cancel()
		_ = r.lifecycle.WaitWithTimeout(ShutdownTimeout)
		_ = r.lifecycle.TransitionTo(StateCrashed, err.Error())
		return
	}

	_ = r.lifecycle.TransitionTo(StateStopping, "context cancelled")
	r.lifecycle.Cancel()
	if werr := r.lifecycle.WaitWithTimeout(ShutdownTimeout); werr != nil {
		_ = r.lifecycle.TransitionTo(StateCrashed, werr.Error())
		return
	}
	_ = r.lifecycle.TransitionTo(StateStopped, "stopped")
}
