package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent error conditions in the pulseship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrNoDeviceFound is returned when every candidate port failed to connect.
	ErrNoDeviceFound = errors.New("pulseship: no device found")

	// ErrChannelResolution is returned when the first frame lacks an expected channel.
	ErrChannelResolution = errors.New("pulseship: channel resolution failed")

	// ErrSinkPush is returned when the telemetry sink rejects a sample.
	ErrSinkPush = errors.New("pulseship: sink push failed")

	// ErrFrameLayout is returned when a frame no longer matches the resolved layout.
	ErrFrameLayout = errors.New("pulseship: frame layout changed")

	// ErrDeviceClosed is returned by drivers once Disconnect has been called.
	ErrDeviceClosed = errors.New("pulseship: device closed")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("pulseship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("pulseship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("pulseship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("pulseship: invalid configuration")
)

// ChannelResolutionError lists the channels that were absent from the first
// frame of a session. It matches ErrChannelResolution with errors.Is.
type ChannelResolutionError struct {
	Missing []ChannelKey
}

func (e *ChannelResolutionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		names[i] = k.String()
	}
	return fmt.Sprintf("%s: missing %s", ErrChannelResolution, strings.Join(names, ", "))
}

// Is reports whether target is ErrChannelResolution.
func (e *ChannelResolutionError) Is(target error) bool {
	return target == ErrChannelResolution
}
