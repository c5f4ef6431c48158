package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeartRate_Validation(t *testing.T) {
	_, err := NewHeartRate(0, 1, 10)
	assert.Error(t, err)
	_, err = NewHeartRate(128, 0, 10)
	assert.Error(t, err)
	_, err = NewHeartRate(128, 1, -1)
	assert.Error(t, err)
}

func TestHeartRate_TrainingReturnsInvalid(t *testing.T) {
	const rate = 128.0
	hr, err := NewHeartRate(rate, 1, 10)
	require.NoError(t, err)

	for i := 0; i < int(rate)*10; i++ {
		ts := float64(i) * 1000 / rate
		got := hr.Estimate(math.Sin(2*math.Pi*1.2*ts/1000), ts)
		require.Equal(t, InvalidRate, got, "sample %d", i)
	}
	assert.False(t, hr.Training())
}

func TestHeartRate_SteadyPulse(t *testing.T) {
	const rate = 128.0
	tests := []struct {
		name  string
		hz    float64
		beats int
	}{
		{"72 bpm single beat", 1.2, 1},
		{"60 bpm averaged", 1.0, 4},
		{"90 bpm", 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hr, err := NewHeartRate(rate, tt.beats, 10)
			require.NoError(t, err)

			var got float64
			for i := 0; i < int(rate)*30; i++ {
				ts := float64(i) * 1000 / rate
				got = hr.Estimate(math.Sin(2*math.Pi*tt.hz*ts/1000), ts)
			}
			assert.InDelta(t, tt.hz*60, math.Round(got), 2)
		})
	}
}

func TestHeartRate_RepeatsBetweenBeats(t *testing.T) {
	const rate = 128.0
	hr, err := NewHeartRate(rate, 1, 0)
	require.NoError(t, err)

	var last float64
	changes := 0
	for i := 0; i < int(rate)*10; i++ {
		ts := float64(i) * 1000 / rate
		got := hr.Estimate(math.Sin(2*math.Pi*ts/1000), ts)
		if got != last {
			changes++
			last = got
		}
	}

	// One estimate per beat at most, far fewer than samples.
	assert.Greater(t, changes, 0)
	assert.Less(t, changes, 12)
}

func TestHeartRate_FlatSignalStaysInvalid(t *testing.T) {
	hr, err := NewHeartRate(128, 1, 1)
	require.NoError(t, err)

	for i := 0; i < 1280; i++ {
		require.Equal(t, InvalidRate, hr.Estimate(0, float64(i)*1000/128))
	}
}

func TestHeartRate_DropoutInvalidates(t *testing.T) {
	const rate = 128.0
	hr, err := NewHeartRate(rate, 1, 0)
	require.NoError(t, err)

	pulse := func(from, to float64) float64 {
		var got float64
		for ts := from; ts < to; ts += 1000 / rate {
			got = hr.Estimate(math.Sin(2*math.Pi*1.2*ts/1000), ts)
		}
		return got
	}

	require.InDelta(t, 72, pulse(0, 10000), 2)

	var got float64
	for ts := 10000.0; ts < 13000; ts += 1000 / rate {
		got = hr.Estimate(0, ts)
	}
	assert.Equal(t, InvalidRate, got, "estimate must not outlive the pulse")

	assert.InDelta(t, 72, pulse(13000, 20000), 2)
}
