package dsp

import (
	"fmt"
	"math"
)

// InvalidRate is returned by Estimate until a beat interval is known and after
// the pulse has been lost for longer than the maximum interval.
const InvalidRate = -1.0

const (
	// Beats closer than this are ignored (caps the estimate at 200 bpm).
	refractoryMs = 300.0
	// Intervals longer than this reset the average and invalidate the
	// estimate (floor of 30 bpm).
	maxIntervalMs = 2000.0
	// Fraction of the decaying peak envelope a rising edge must cross.
	thresholdRatio = 0.5
	// Seconds for the peak envelope to decay to half.
	envelopeHalfLife = 2.0
)

// HeartRate estimates beats per minute from a filtered PPG signal.
//
// The first trainingPeriod seconds of samples only seed the peak envelope.
// After that every rising crossing of half the envelope that is at least
// refractoryMs after the previous beat counts as a beat, and the estimate is
// the mean of the last beatsToAverage intervals. Estimate returns the current
// value on every call, repeating it between beats. Timestamps are in
// milliseconds.
type HeartRate struct {
	rate      float64
	beats     int
	trainLeft int
	decay     float64

	envelope  float64
	prev      float64
	havePrev  bool
	lastBeat  float64
	haveBeat  bool
	intervals []float64
	bpm       float64
}

// NewHeartRate creates an estimator for the given sampling rate, number of
// beats to average and training period in seconds.
func NewHeartRate(rate float64, beatsToAverage, trainingPeriod int) (*HeartRate, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("dsp: sampling rate must be positive, got %v", rate)
	}
	if beatsToAverage < 1 {
		return nil, fmt.Errorf("dsp: beats to average must be at least 1, got %d", beatsToAverage)
	}
	if trainingPeriod < 0 {
		return nil, fmt.Errorf("dsp: training period must not be negative, got %d", trainingPeriod)
	}
	return &HeartRate{
		rate:      rate,
		beats:     beatsToAverage,
		trainLeft: int(math.Round(rate * float64(trainingPeriod))),
		decay:     math.Pow(0.5, 1/(envelopeHalfLife*rate)),
		bpm:       InvalidRate,
	}, nil
}

// Estimate consumes one sample and returns the current bpm estimate.
func (h *HeartRate) Estimate(sample, timestamp float64) float64 {
	mag := math.Abs(sample)
	h.envelope *= h.decay
	if mag > h.envelope {
		h.envelope = mag
	}

	if h.trainLeft > 0 {
		h.trainLeft--
		h.prev, h.havePrev = sample, true
		return h.bpm
	}

	threshold := thresholdRatio * h.envelope
	rising := h.havePrev && h.prev < threshold && sample >= threshold
	h.prev, h.havePrev = sample, true

	if rising {
		h.beat(timestamp)
	} else if h.haveBeat && timestamp-h.lastBeat > maxIntervalMs {
		h.reset()
	}
	return h.bpm
}

func (h *HeartRate) beat(ts float64) {
	if !h.haveBeat {
		h.lastBeat, h.haveBeat = ts, true
		return
	}

	interval := ts - h.lastBeat
	if interval < refractoryMs {
		return
	}
	h.lastBeat = ts

	if interval > maxIntervalMs {
		h.reset()
		return
	}

	h.intervals = append(h.intervals, interval)
	if len(h.intervals) > h.beats {
		h.intervals = h.intervals[len(h.intervals)-h.beats:]
	}

	var sum float64
	for _, v := range h.intervals {
		sum += v
	}
	h.bpm = 60000 / (sum / float64(len(h.intervals)))
}

// reset drops the averaged intervals after a gap in the pulse.
func (h *HeartRate) reset() {
	h.intervals = h.intervals[:0]
	h.bpm = InvalidRate
}

// Training reports whether the estimator is still in its training period.
func (h *HeartRate) Training() bool {
	return h.trainLeft > 0
}
