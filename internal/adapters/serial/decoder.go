package serial

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Line framing errors.
var (
	ErrNoHeader     = errors.New("serial: data row before header")
	ErrBadHeader    = errors.New("serial: malformed header")
	ErrFieldCount   = errors.New("serial: row does not match header")
	ErrBadFieldData = errors.New("serial: malformed value")
)

// Decoder turns the device's text framing into frames.
//
// A header line declares the channel layout:
//
//	# System Timestamp|CAL|mSecs,GSR|CAL|kOhms,...
//
// Each following non-empty line is one comma-separated row of values in
// header order. A new header replaces the layout.
type Decoder struct {
	keys  []domain.ChannelKey
	units []string
}

// HasLayout reports whether a header has been seen.
func (d *Decoder) HasLayout() bool { return len(d.keys) > 0 }

// Decode consumes one line. ok is true when the line produced a frame.
func (d *Decoder) Decode(line string) (f domain.Frame, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Frame{}, false, nil
	}
	if strings.HasPrefix(line, "#") {
		return domain.Frame{}, false, d.header(strings.TrimSpace(line[1:]))
	}
	if !d.HasLayout() {
		return domain.Frame{}, false, ErrNoHeader
	}

	fields := strings.Split(line, ",")
	if len(fields) != len(d.keys) {
		return domain.Frame{}, false, fmt.Errorf("%w: got %d values, want %d", ErrFieldCount, len(fields), len(d.keys))
	}

	channels := make([]domain.Channel, len(fields))
	for i, raw := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return domain.Frame{}, false, fmt.Errorf("%w: %s: %v", ErrBadFieldData, d.keys[i], err)
		}
		channels[i] = domain.Channel{
			Key:     d.keys[i],
			Reading: domain.Reading{Value: v, Unit: d.units[i]},
		}
	}
	return domain.Frame{Channels: channels}, true, nil
}

func (d *Decoder) header(spec string) error {
	if spec == "" {
		return ErrBadHeader
	}
	cols := strings.Split(spec, ",")
	keys := make([]domain.ChannelKey, 0, len(cols))
	units := make([]string, 0, len(cols))
	for _, col := range cols {
		parts := strings.Split(strings.TrimSpace(col), "|")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("%w: %q", ErrBadHeader, col)
		}
		unit := ""
		if len(parts) > 2 {
			unit = parts[2]
		}
		keys = append(keys, domain.ChannelKey{Name: parts[0], Format: strings.ToUpper(parts[1])})
		units = append(units, unit)
	}
	d.keys, d.units = keys, units
	return nil
}
