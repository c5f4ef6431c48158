// Package arbiter finds the sensor among the host's candidate endpoints.
//
// Candidates are tried one at a time in lexicographic order. Each attempt
// races the device's state notifications against a timeout; the first
// Connected wins and scanning stops. Every losing candidate is released
// before the next one is tried.
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/metrics"
	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultTimeout is the per-candidate connection timeout.
const DefaultTimeout = 3 * time.Second

// Attempt outcomes, also used as metric labels.
const (
	OutcomeConnected = "connected"
	OutcomeRejected  = "rejected"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
)

var errRejected = errors.New("device reported idle")

// Config holds arbiter settings.
type Config struct {
	// Timeout bounds each candidate's connection attempt.
	Timeout time.Duration
	// WaitForPorts, when positive, waits up to this long for an endpoint to
	// appear if none are present at scan time.
	WaitForPorts time.Duration
}

// PortWaiter blocks until a new endpoint may be available or the timeout
// elapses.
type PortWaiter interface {
	WaitForPorts(ctx context.Context, timeout time.Duration) error
}

// Result is the adopted candidate.
type Result struct {
	Port     string
	Device   ports.Device
	Attempts int
	Elapsed  time.Duration
}

// Arbiter scans candidate endpoints for a device.
type Arbiter struct {
	lister  ports.PortLister
	factory ports.DeviceFactory
	waiter  PortWaiter
	cfg     Config
	logger  ports.Logger
	metrics *metrics.Metrics
}

// New creates an arbiter. waiter and m may be nil.
func New(lister ports.PortLister, factory ports.DeviceFactory, waiter PortWaiter, cfg Config, logger ports.Logger, m *metrics.Metrics) *Arbiter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Arbiter{
		lister:  lister,
		factory: factory,
		waiter:  waiter,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Scan tries each candidate until one connects. It returns an error wrapping
// domain.ErrNoDeviceFound when every candidate fails.
func (a *Arbiter) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	names, err := a.candidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no candidate ports", domain.ErrNoDeviceFound)
	}

	for i, name := range names {
		a.logger.Info("trying port", ports.String("port", name))

		dev, outcome, err := a.attempt(ctx, name)
		a.metrics.ScanAttempt(outcome)

		if ctxErr := ctx.Err(); ctxErr != nil {
			if dev != nil {
				a.release(dev)
			}
			return nil, ctxErr
		}
		if outcome == OutcomeConnected {
			a.logger.Info("connected", ports.String("port", name))
			return &Result{
				Port:     name,
				Device:   dev,
				Attempts: i + 1,
				Elapsed:  time.Since(start),
			}, nil
		}

		fields := []ports.Field{ports.String("port", name), ports.String("outcome", outcome)}
		if err != nil {
			fields = append(fields, ports.Err(err))
		}
		if outcome == OutcomeError {
			a.logger.Warn("error trying port", fields...)
		} else {
			a.logger.Info("port did not connect", fields...)
		}
	}

	return nil, fmt.Errorf("%w: tried %d ports", domain.ErrNoDeviceFound, len(names))
}

// candidates lists endpoints in lexicographic order, waiting for one to
// appear when configured.
func (a *Arbiter) candidates(ctx context.Context) ([]string, error) {
	names, err := a.lister.Ports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	if len(names) == 0 && a.waiter != nil && a.cfg.WaitForPorts > 0 {
		a.logger.Info("no ports found, waiting", ports.Duration("timeout", a.cfg.WaitForPorts))
		if err := a.waiter.WaitForPorts(ctx, a.cfg.WaitForPorts); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("waiting for ports failed", ports.Err(err))
		}
		if names, err = a.lister.Ports(ctx); err != nil {
			return nil, fmt.Errorf("list ports: %w", err)
		}
	}

	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return sorted, nil
}

// attempt connects to one candidate. On any outcome other than connected the
// candidate has been released when attempt returns.
func (a *Arbiter) attempt(ctx context.Context, name string) (dev ports.Device, outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic connecting %s: %v", name, r)
			outcome = OutcomeError
		}
		if outcome != OutcomeConnected && dev != nil {
			a.release(dev)
			dev = nil
		}
	}()

	dev, err = a.factory(name)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("open %s: %w", name, err)
	}

	events := dev.Events()
	if err := dev.Connect(); err != nil {
		return dev, OutcomeError, err
	}

	timer := time.NewTimer(a.cfg.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return dev, OutcomeError, ctx.Err()
		case <-timer.C:
			return dev, OutcomeTimeout, nil
		case ev, ok := <-events:
			if !ok {
				return dev, OutcomeRejected, errRejected
			}
			sc, isState := ev.(domain.StateChanged)
			if !isState {
				continue
			}
			switch sc.State {
			case domain.StateConnected:
				return dev, OutcomeConnected, nil
			case domain.StateNone:
				return dev, OutcomeRejected, errRejected
			}
		}
	}
}

// release disconnects a losing candidate. Errors and panics are swallowed.
func (a *Arbiter) release(dev ports.Device) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug("release panicked", ports.String("port", dev.Name()), ports.Any("panic", r))
		}
	}()
	if err := dev.Disconnect(); err != nil {
		a.logger.Debug("release failed", ports.String("port", dev.Name()), ports.Err(err))
	}
}
