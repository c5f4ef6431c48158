// Package fake provides a scriptable in-memory sensor device for tests.
package fake

import (
	"sync"
	"time"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Device implements ports.Device. Hooks run synchronously inside the
// corresponding call and may emit events.
type Device struct {
	name    string
	version domain.HardwareVersion
	events  chan domain.Event

	// OnConnect runs inside Connect. Nil does nothing.
	OnConnect func(d *Device) error
	// OnStart runs inside StartStreaming. Nil emits Streaming.
	OnStart func(d *Device) error
	// DisconnectErr is returned by Disconnect.
	DisconnectErr error

	mu          sync.Mutex
	closed      bool
	connects    int
	disconnects int
	starts      int
}

// New creates a Shimmer3 fake device.
func New(name string) *Device {
	return &Device{
		name:    name,
		version: domain.HardwareShimmer3,
		events:  make(chan domain.Event, 4096),
	}
}

// WithVersion sets the reported hardware version.
func (d *Device) WithVersion(v domain.HardwareVersion) *Device {
	d.version = v
	return d
}

// Emit delivers ev unless the device has been disconnected.
func (d *Device) Emit(ev domain.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.events <- ev
	return true
}

// EmitState delivers a StateChanged event.
func (d *Device) EmitState(s domain.DeviceState) bool {
	return d.Emit(domain.StateChanged{State: s})
}

// Connect implements ports.Device.
func (d *Device) Connect() error {
	d.mu.Lock()
	d.connects++
	hook := d.OnConnect
	d.mu.Unlock()

	if hook != nil {
		return hook(d)
	}
	return nil
}

// Disconnect implements ports.Device.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disconnects++
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	return d.DisconnectErr
}

// StartStreaming implements ports.Device.
func (d *Device) StartStreaming() error {
	d.mu.Lock()
	d.starts++
	hook := d.OnStart
	d.mu.Unlock()

	if hook != nil {
		return hook(d)
	}
	d.EmitState(domain.StateStreaming)
	return nil
}

// HardwareVersion implements ports.Device.
func (d *Device) HardwareVersion() domain.HardwareVersion { return d.version }

// Events implements ports.Device.
func (d *Device) Events() <-chan domain.Event { return d.events }

// Name implements ports.Device.
func (d *Device) Name() string { return d.name }

// Connects returns how many times Connect was called.
func (d *Device) Connects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects
}

// Disconnects returns how many times Disconnect was called.
func (d *Device) Disconnects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disconnects
}

// Starts returns how many times StartStreaming was called.
func (d *Device) Starts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts
}

// RespondAfter returns an OnConnect hook that emits Connecting immediately
// and state after delay.
func RespondAfter(delay time.Duration, state domain.DeviceState) func(d *Device) error {
	return func(d *Device) error {
		d.EmitState(domain.StateConnecting)
		go func() {
			time.Sleep(delay)
			d.EmitState(state)
		}()
		return nil
	}
}

// Silent returns an OnConnect hook that emits Connecting and nothing else.
func Silent() func(d *Device) error {
	return func(d *Device) error {
		d.EmitState(domain.StateConnecting)
		return nil
	}
}
