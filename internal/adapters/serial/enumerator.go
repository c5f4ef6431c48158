// Package serial connects to the sensor over a serial port.
package serial

import (
	"context"
	"strings"

	goserial "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Lister enumerates serial ports on the host.
type Lister struct {
	// VID restricts results to USB ports with this vendor id (hex, case
	// insensitive). Empty lists every port.
	VID string

	detailed func() ([]*enumerator.PortDetails, error)
	plain    func() ([]string, error)
}

// NewLister creates a Lister backed by the host enumerator.
func NewLister(vid string) *Lister {
	return &Lister{
		VID:      vid,
		detailed: enumerator.GetDetailedPortsList,
		plain:    goserial.GetPortsList,
	}
}

// Ports implements ports.PortLister. When detailed enumeration fails and no
// vendor filter is set, it falls back to the plain port list.
func (l *Lister) Ports(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := l.detailed()
	if err != nil {
		if l.VID != "" {
			return nil, err
		}
		return l.plain()
	}

	names := make([]string, 0, len(details))
	for _, p := range details {
		if l.VID != "" && (!p.IsUSB || !strings.EqualFold(p.VID, l.VID)) {
			continue
		}
		names = append(names, p.Name)
	}
	return names, nil
}
