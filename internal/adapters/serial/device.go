package serial

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	goserial "go.bug.st/serial"

	"github.com/bft-labs/pulseship/internal/adapters/driver"
	"github.com/bft-labs/pulseship/internal/domain"
	"github.com/bft-labs/pulseship/internal/ports"
)

// DefaultBaudRate matches the sensor firmware's default.
const DefaultBaudRate = 115200

// Host commands. The firmware answers InquiryCommand with its header line.
const (
	SensorsCommand = "sensors 0x%06x\n"
	InquiryCommand = "inquiry\n"
	StartCommand   = "start\n"
)

// OpenFunc opens a port. The default wraps go.bug.st/serial.Open.
type OpenFunc func(name string, mode *goserial.Mode) (io.ReadWriteCloser, error)

// Config holds serial device settings.
type Config struct {
	BaudRate int
	Version  domain.HardwareVersion
	// Sensors is the enabled sensor bitmap written to the device before the
	// inquiry.
	Sensors uint32
	// Open overrides the port opener.
	Open OpenFunc
}

func defaultOpen(name string, mode *goserial.Mode) (io.ReadWriteCloser, error) {
	return goserial.Open(name, mode)
}

// Device is a sensor reachable over one serial port.
type Device struct {
	name   string
	cfg    Config
	events *driver.Events
	logger ports.Logger

	mu        sync.Mutex
	port      io.ReadWriteCloser
	connected bool
	streaming atomic.Bool
}

// NewDevice creates a device for the named port. Nothing is opened until
// Connect.
func NewDevice(name string, cfg Config, logger ports.Logger) *Device {
	if cfg.BaudRate <= 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Open == nil {
		cfg.Open = defaultOpen
	}
	if cfg.Sensors == 0 {
		cfg.Sensors = domain.DefaultSensors
	}
	return &Device{
		name:   name,
		cfg:    cfg,
		events: driver.NewEvents(512),
		logger: logger,
	}
}

// Factory returns a ports.DeviceFactory building serial devices with cfg.
func Factory(cfg Config, logger ports.Logger) ports.DeviceFactory {
	return func(port string) (ports.Device, error) {
		return NewDevice(port, cfg, logger), nil
	}
}

// Connect opens the port in the background and sends the sensor bitmap and
// an inquiry. Connected is reported when the device answers with its header
// line; a port that stays silent never leaves Connecting. None is reported
// if opening or the handshake fails.
func (d *Device) Connect() error {
	if !d.send(domain.StateChanged{State: domain.StateConnecting}) {
		return domain.ErrDeviceClosed
	}
	go d.open()
	return nil
}

// open runs without a producer slot while cfg.Open blocks, so Disconnect
// never waits on a slow open.
func (d *Device) open() {
	port, err := d.cfg.Open(d.name, &goserial.Mode{BaudRate: d.cfg.BaudRate})
	if err != nil {
		d.logger.Debug("open failed", ports.String("port", d.name), ports.Err(err))
		d.send(domain.StateChanged{State: domain.StateNone})
		return
	}

	d.mu.Lock()
	if !d.events.Acquire() {
		d.mu.Unlock()
		port.Close()
		return
	}
	d.port = port
	d.mu.Unlock()
	defer d.events.Release()

	if err := d.handshake(port); err != nil {
		d.logger.Debug("handshake failed", ports.String("port", d.name), ports.Err(err))
		if !d.events.Closed() {
			d.events.Send(domain.StateChanged{State: domain.StateNone})
		}
		return
	}
	d.read(port)
}

func (d *Device) handshake(port io.Writer) error {
	if _, err := fmt.Fprintf(port, SensorsCommand, d.cfg.Sensors); err != nil {
		return fmt.Errorf("write sensors: %w", err)
	}
	if _, err := io.WriteString(port, InquiryCommand); err != nil {
		return fmt.Errorf("write inquiry: %w", err)
	}
	return nil
}

// send delivers one event from outside a long-lived producer.
func (d *Device) send(ev domain.Event) bool {
	if !d.events.Acquire() {
		return false
	}
	defer d.events.Release()
	return d.events.Send(ev)
}

// StartStreaming sends the start command. Rows are forwarded as frames from
// then on. A second call is a no-op.
func (d *Device) StartStreaming() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return errors.New("serial: not connected")
	}
	if d.streaming.Load() {
		return nil
	}
	if !d.events.Acquire() {
		return domain.ErrDeviceClosed
	}
	defer d.events.Release()
	if _, err := io.WriteString(d.port, StartCommand); err != nil {
		return fmt.Errorf("write start command: %w", err)
	}
	if !d.events.Send(domain.StateChanged{State: domain.StateStreaming}) {
		return domain.ErrDeviceClosed
	}
	d.streaming.Store(true)
	return nil
}

// read decodes lines until the port closes. The first header line completes
// the connection. Rows before StartStreaming are dropped. A read failure that
// is not caused by Disconnect is reported as None.
func (d *Device) read(port io.Reader) {
	var (
		dec       Decoder
		announced bool
	)
	sc := bufio.NewScanner(port)
	for sc.Scan() {
		f, ok, err := dec.Decode(sc.Text())
		if err != nil {
			if !d.events.Send(domain.Notification{Message: err.Error()}) {
				return
			}
			continue
		}
		if !announced && dec.HasLayout() {
			announced = true
			d.mu.Lock()
			d.connected = true
			d.mu.Unlock()
			if !d.events.Send(domain.StateChanged{State: domain.StateConnected}) {
				return
			}
		}
		if !ok || !d.streaming.Load() {
			continue
		}
		if !d.events.Send(domain.DataFrame{Frame: f}) {
			return
		}
	}

	if d.events.Closed() {
		return
	}
	if err := sc.Err(); err != nil {
		d.logger.Warn("serial read failed", ports.String("port", d.name), ports.Err(err))
	}
	d.events.Send(domain.StateChanged{State: domain.StateNone})
}

// Disconnect closes the port and the event channel. Safe to call more than
// once.
func (d *Device) Disconnect() error {
	var closeErr error
	d.events.Shutdown(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.port != nil {
			closeErr = d.port.Close()
		}
	}, domain.StateChanged{State: domain.StateNone})
	return closeErr
}

// HardwareVersion implements ports.Device.
func (d *Device) HardwareVersion() domain.HardwareVersion { return d.cfg.Version }

// Events implements ports.Device.
func (d *Device) Events() <-chan domain.Event { return d.events.C() }

// Name implements ports.Device.
func (d *Device) Name() string { return d.name }
