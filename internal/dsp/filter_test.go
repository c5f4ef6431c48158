package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, rate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return out
}

func rms(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x * x
	}
	return math.Sqrt(s / float64(len(xs)))
}

func TestNewFilter_Validation(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		rate   float64
		corner float64
		order  int
	}{
		{"zero rate", LowPass, 0, 5, DefaultOrder},
		{"zero corner", LowPass, 128, 0, DefaultOrder},
		{"corner at nyquist", HighPass, 128, 64, DefaultOrder},
		{"odd order", LowPass, 128, 5, 201},
		{"unknown kind", Kind(7), 128, 5, DefaultOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFilterOrder(tt.kind, tt.rate, tt.corner, tt.order)
			assert.Error(t, err)
		})
	}
}

func TestFilter_DCGain(t *testing.T) {
	lp, err := NewFilter(LowPass, 128, 5)
	require.NoError(t, err)
	hp, err := NewFilter(HighPass, 128, 0.5)
	require.NoError(t, err)

	var lpOut, hpOut float64
	for i := 0; i < 2*(DefaultOrder+1); i++ {
		lpOut = lp.Apply(3.0)
		hpOut = hp.Apply(3.0)
	}

	assert.InDelta(t, 3.0, lpOut, 1e-9, "low-pass passes DC")
	assert.InDelta(t, 0.0, hpOut, 1e-9, "high-pass removes DC")
}

func TestFilter_LowPassAttenuatesHighFrequency(t *testing.T) {
	lp, err := NewFilter(LowPass, 128, 5)
	require.NoError(t, err)

	in := sine(30, 128, 1024)
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = lp.Apply(x)
	}

	// Skip the start-up transient.
	assert.Less(t, rms(out[DefaultOrder+1:]), 0.01*rms(in))
}

func TestFilter_LowPassKeepsPassband(t *testing.T) {
	lp, err := NewFilter(LowPass, 128, 5)
	require.NoError(t, err)

	in := sine(1, 128, 1024)
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = lp.Apply(x)
	}

	assert.InDelta(t, rms(in[DefaultOrder+1:]), rms(out[DefaultOrder+1:]), 0.02)
}

func TestFilterChain_Deterministic(t *testing.T) {
	in := make([]float64, 600)
	for i := range in {
		in[i] = math.Sin(float64(i)*0.11) + 0.3*math.Cos(float64(i)*1.7) + float64(i%7)
	}

	run := func() []float64 {
		lp, err := NewFilter(LowPass, 128, 5)
		require.NoError(t, err)
		hp, err := NewFilter(HighPass, 128, 0.5)
		require.NoError(t, err)

		out := make([]float64, len(in))
		for i, x := range in {
			out[i] = hp.Apply(lp.Apply(x))
		}
		return out
	}

	first, second := run(), run()
	for i := range first {
		if math.Float64bits(first[i]) != math.Float64bits(second[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestFilter_Reset(t *testing.T) {
	f, err := NewFilter(LowPass, 128, 5)
	require.NoError(t, err)

	first := f.Apply(1)
	for i := 0; i < 50; i++ {
		f.Apply(float64(i))
	}
	f.Reset()

	assert.Equal(t, first, f.Apply(1))
}

func TestFilter_TapsSymmetric(t *testing.T) {
	f, err := NewFilter(HighPass, 128, 0.5)
	require.NoError(t, err)

	taps := f.Taps()
	require.Len(t, taps, DefaultOrder+1)
	for i := range taps {
		assert.InDelta(t, taps[i], taps[len(taps)-1-i], 1e-15)
	}
	assert.Equal(t, HighPass, f.Kind())
	assert.Equal(t, 0.5, f.Corner())
}
