package ports

import (
	"context"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Device is a sensor driver bound to one endpoint.
//
// Connect starts an asynchronous connection attempt; the outcome is reported
// as StateChanged events (Connected on success, None on failure). Events are
// delivered in order on the channel returned by Events, which is closed after
// the device has been disconnected and drained.
type Device interface {
	// Connect begins connecting. It may return an error for failures that
	// happen before the attempt is underway.
	Connect() error

	// Disconnect releases the endpoint. Safe to call more than once.
	Disconnect() error

	// StartStreaming commands the hardware to begin emitting frames.
	StartStreaming() error

	// HardwareVersion reports the sensor hardware generation.
	HardwareVersion() domain.HardwareVersion

	// Events returns the single notification channel for this device.
	Events() <-chan domain.Event

	// Name returns the endpoint identifier.
	Name() string
}

// PortLister enumerates candidate endpoints.
type PortLister interface {
	Ports(ctx context.Context) ([]string, error)
}

// PortListerFunc adapts a function to PortLister.
type PortListerFunc func(ctx context.Context) ([]string, error)

// Ports calls f(ctx).
func (f PortListerFunc) Ports(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// DeviceFactory builds a Device for the named endpoint.
type DeviceFactory func(port string) (Device, error)
