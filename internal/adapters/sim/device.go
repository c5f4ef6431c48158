// Package sim provides a simulated sensor that streams synthetic
// accelerometer, GSR and PPG frames. It is selected with port "sim".
package sim

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/pulseship/internal/adapters/driver"
	"github.com/bft-labs/pulseship/internal/domain"
)

// PortName is the pseudo endpoint served by the simulator.
const PortName = "sim"

// Config holds simulator settings.
type Config struct {
	SamplingRate float64
	Version      domain.HardwareVersion
	ConnectDelay time.Duration
	// HeartRate is the simulated pulse in beats per minute.
	HeartRate float64
	// Realtime paces frames at the sampling rate; otherwise frames are
	// emitted as fast as the consumer accepts them.
	Realtime bool
}

// DefaultConfig returns a 128 Hz Shimmer3 simulation at 72 bpm.
func DefaultConfig() Config {
	return Config{
		SamplingRate: 128,
		Version:      domain.HardwareShimmer3,
		ConnectDelay: 200 * time.Millisecond,
		HeartRate:    72,
		Realtime:     true,
	}
}

// Device implements ports.Device with synthetic data.
type Device struct {
	name   string
	cfg    Config
	events *driver.Events

	connected   chan struct{}
	connectOnce sync.Once
	streaming   atomic.Bool
}

// New creates a simulated device.
func New(cfg Config) *Device {
	if cfg.SamplingRate <= 0 {
		cfg.SamplingRate = 128
	}
	return &Device{
		name:      PortName,
		cfg:       cfg,
		events:    driver.NewEvents(256),
		connected: make(chan struct{}),
	}
}

// Connect reports Connecting, then Connected after the configured delay.
func (d *Device) Connect() error {
	if !d.events.Acquire() {
		return domain.ErrDeviceClosed
	}
	d.events.Send(domain.StateChanged{State: domain.StateConnecting})

	go func() {
		defer d.events.Release()
		select {
		case <-time.After(d.cfg.ConnectDelay):
		case <-d.events.Done():
			return
		}
		if d.events.Send(domain.StateChanged{State: domain.StateConnected}) {
			d.connectOnce.Do(func() { close(d.connected) })
		}
	}()
	return nil
}

// StartStreaming begins emitting frames.
func (d *Device) StartStreaming() error {
	select {
	case <-d.connected:
	default:
		return errors.New("sim: not connected")
	}
	if !d.streaming.CompareAndSwap(false, true) {
		return nil
	}

	if !d.events.Acquire() {
		return domain.ErrDeviceClosed
	}
	d.events.Send(domain.StateChanged{State: domain.StateStreaming})
	go func() {
		defer d.events.Release()
		d.stream()
	}()
	return nil
}

func (d *Device) stream() {
	var tick <-chan time.Time
	if d.cfg.Realtime {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / d.cfg.SamplingRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; ; n++ {
		if tick != nil {
			select {
			case <-tick:
			case <-d.events.Done():
				return
			}
		}
		if !d.events.Send(domain.DataFrame{Frame: d.Frame(n)}) {
			return
		}
	}
}

// Frame returns the n-th synthetic frame.
func (d *Device) Frame(n int) domain.Frame {
	t := float64(n) / d.cfg.SamplingRate
	beat := 2 * math.Pi * d.cfg.HeartRate / 60 * t

	ppg := domain.ChannelInternalADCA14
	if d.cfg.Version == domain.HardwareShimmer3 {
		ppg = domain.ChannelInternalADCA13
	}

	cal := func(name string, v float64, unit string) domain.Channel {
		return domain.Channel{
			Key:     domain.ChannelKey{Name: name, Format: domain.FormatCAL},
			Reading: domain.Reading{Value: v, Unit: unit},
		}
	}

	return domain.Frame{Channels: []domain.Channel{
		cal(domain.ChannelSystemTimestamp, t*1000, "mSecs"),
		cal(domain.ChannelAccelX, 0.05*math.Sin(2*math.Pi*0.3*t), "m/(s^2)"),
		cal(domain.ChannelAccelY, 0.05*math.Cos(2*math.Pi*0.3*t), "m/(s^2)"),
		cal(domain.ChannelAccelZ, 9.81, "m/(s^2)"),
		cal(domain.ChannelGSR, 250+10*math.Sin(2*math.Pi*0.02*t), "kOhms"),
		cal(ppg, 1500+120*math.Sin(beat)+30*math.Sin(2*beat), "mVolts"),
	}}
}

// Disconnect stops the simulation and closes the event channel.
func (d *Device) Disconnect() error {
	d.events.Shutdown(nil, domain.StateChanged{State: domain.StateNone})
	return nil
}

// HardwareVersion implements ports.Device.
func (d *Device) HardwareVersion() domain.HardwareVersion { return d.cfg.Version }

// Events implements ports.Device.
func (d *Device) Events() <-chan domain.Event { return d.events.C() }

// Name implements ports.Device.
func (d *Device) Name() string { return d.name }
