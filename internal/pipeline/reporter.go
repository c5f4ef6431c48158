package pipeline

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Reporter writes a status line every rate frames.
type Reporter struct {
	out  io.Writer
	rate float64
}

// NewReporter creates a reporter writing to out once per rate frames.
func NewReporter(out io.Writer, rate float64) *Reporter {
	return &Reporter{out: out, rate: rate}
}

// Due reports whether count is a multiple of the sampling rate.
func (r *Reporter) Due(count uint64) bool {
	return math.Mod(float64(count), r.rate) == 0
}

// Report prints the status lines when count is due.
func (r *Reporter) Report(count uint64, s Samples, bpm int) error {
	if !r.Due(count) {
		return nil
	}
	_, err := fmt.Fprintf(r.out,
		"AccelX: %s %s AccelY: %s %s AccelZ: %s %s\n"+
			"Time Stamp: %s %s GSR: %s %s PPG: %s %s HR: %d BPM\n",
		num(s.AccelX.Value), s.AccelX.Unit,
		num(s.AccelY.Value), s.AccelY.Unit,
		num(s.AccelZ.Value), s.AccelZ.Unit,
		num(s.Timestamp.Value), s.Timestamp.Unit,
		num(s.GSR.Value), s.GSR.Unit,
		num(s.PPG.Value), s.PPG.Unit,
		bpm,
	)
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
