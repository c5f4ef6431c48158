package pipeline

import (
	"fmt"

	"github.com/bft-labs/pulseship/internal/domain"
)

// Config parameterizes the signal path.
type Config struct {
	SamplingRate   float64
	LowPassHz      float64
	HighPassHz     float64
	BeatsToAverage int
	TrainingPeriod int // seconds
}

// DefaultConfig returns the reference configuration: 128 Hz, 5 Hz low-pass,
// 0.5 Hz high-pass, one beat averaged, ten seconds of training.
func DefaultConfig() Config {
	return Config{
		SamplingRate:   128,
		LowPassHz:      5,
		HighPassHz:     0.5,
		BeatsToAverage: 1,
		TrainingPeriod: 10,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.SamplingRate <= 0 {
		return fmt.Errorf("%w: sampling rate must be positive", domain.ErrInvalidConfig)
	}
	if c.LowPassHz <= 0 || c.HighPassHz <= 0 {
		return fmt.Errorf("%w: corner frequencies must be positive", domain.ErrInvalidConfig)
	}
	if c.BeatsToAverage < 1 {
		return fmt.Errorf("%w: beats to average must be at least 1", domain.ErrInvalidConfig)
	}
	if c.TrainingPeriod < 0 {
		return fmt.Errorf("%w: training period must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
