package dsp

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// Kind selects the filter response.
type Kind int

const (
	LowPass Kind = iota
	HighPass
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case LowPass:
		return "low-pass"
	case HighPass:
		return "high-pass"
	default:
		return "unknown"
	}
}

// DefaultOrder is the FIR order used by NewFilter; the filter has
// DefaultOrder+1 taps.
const DefaultOrder = 200

// Filter is a linear-phase FIR filter with a Blackman-windowed sinc kernel.
type Filter struct {
	kind    Kind
	rate    float64
	corner  float64
	taps    []float64
	history []float64
	pos     int
}

// NewFilter designs a filter of the given kind for a sampling rate and corner
// frequency in Hz. The corner must lie strictly between 0 and rate/2.
func NewFilter(kind Kind, rate, corner float64) (*Filter, error) {
	return NewFilterOrder(kind, rate, corner, DefaultOrder)
}

// NewFilterOrder is NewFilter with an explicit even order.
func NewFilterOrder(kind Kind, rate, corner float64, order int) (*Filter, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("dsp: sampling rate must be positive, got %v", rate)
	}
	if corner <= 0 || corner >= rate/2 {
		return nil, fmt.Errorf("dsp: corner %v Hz outside (0, %v)", corner, rate/2)
	}
	if order <= 0 || order%2 != 0 {
		return nil, fmt.Errorf("dsp: order must be positive and even, got %d", order)
	}
	if kind != LowPass && kind != HighPass {
		return nil, fmt.Errorf("dsp: unknown filter kind %d", kind)
	}

	taps := design(kind, corner/rate, order)
	return &Filter{
		kind:    kind,
		rate:    rate,
		corner:  corner,
		taps:    taps,
		history: make([]float64, len(taps)),
	}, nil
}

// design builds the kernel. fc is the normalized corner (cycles per sample).
func design(kind Kind, fc float64, order int) []float64 {
	n := order + 1
	mid := order / 2
	w := window.Blackman(n)

	taps := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		k := float64(i - mid)
		var h float64
		if i == mid {
			h = 2 * math.Pi * fc
		} else {
			h = math.Sin(2*math.Pi*fc*k) / k
		}
		taps[i] = h * w[i]
		sum += taps[i]
	}
	// Unity gain at DC.
	for i := range taps {
		taps[i] /= sum
	}

	if kind == HighPass {
		// Spectral inversion of the low-pass kernel.
		for i := range taps {
			taps[i] = -taps[i]
		}
		taps[mid]++
	}
	return taps
}

// Apply pushes one sample and returns the filtered output.
func (f *Filter) Apply(x float64) float64 {
	f.history[f.pos] = x

	var y float64
	idx := f.pos
	for _, h := range f.taps {
		y += h * f.history[idx]
		idx--
		if idx < 0 {
			idx = len(f.history) - 1
		}
	}

	f.pos++
	if f.pos == len(f.history) {
		f.pos = 0
	}
	return y
}

// Reset clears the sample history.
func (f *Filter) Reset() {
	for i := range f.history {
		f.history[i] = 0
	}
	f.pos = 0
}

// Kind returns the filter response kind.
func (f *Filter) Kind() Kind { return f.kind }

// Corner returns the corner frequency in Hz.
func (f *Filter) Corner() float64 { return f.corner }

// Taps returns a copy of the filter kernel.
func (f *Filter) Taps() []float64 {
	return append([]float64(nil), f.taps...)
}
