package pipeline

import (
	"fmt"
	"math"

	"github.com/bft-labs/pulseship/internal/dsp"
	"github.com/bft-labs/pulseship/internal/ports"
)

// Chain filters PPG samples (low-pass then high-pass) and feeds the result to
// the heart-rate estimator.
type Chain struct {
	lowPass  ports.Filter
	highPass ports.Filter
	hr       ports.HeartRateEstimator
}

// NewChain builds the filter chain and estimator from cfg.
func NewChain(cfg Config) (*Chain, error) {
	lp, err := dsp.NewFilter(dsp.LowPass, cfg.SamplingRate, cfg.LowPassHz)
	if err != nil {
		return nil, fmt.Errorf("low-pass: %w", err)
	}
	hp, err := dsp.NewFilter(dsp.HighPass, cfg.SamplingRate, cfg.HighPassHz)
	if err != nil {
		return nil, fmt.Errorf("high-pass: %w", err)
	}
	hr, err := dsp.NewHeartRate(cfg.SamplingRate, cfg.BeatsToAverage, cfg.TrainingPeriod)
	if err != nil {
		return nil, fmt.Errorf("heart rate: %w", err)
	}
	return NewChainWith(lp, hp, hr), nil
}

// NewChainWith composes a chain from existing primitives.
func NewChainWith(lowPass, highPass ports.Filter, hr ports.HeartRateEstimator) *Chain {
	return &Chain{lowPass: lowPass, highPass: highPass, hr: hr}
}

// Process filters one PPG sample and returns the filtered value and the
// rounded bpm estimate.
func (c *Chain) Process(ppg, timestamp float64) (float64, int) {
	filtered := c.highPass.Apply(c.lowPass.Apply(ppg))
	bpm := int(math.Round(c.hr.Estimate(filtered, timestamp)))
	return filtered, bpm
}
