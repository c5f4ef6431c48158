package ports

// Filter is a stateful per-sample transform.
type Filter interface {
	Apply(x float64) float64
}

// HeartRateEstimator consumes filtered PPG samples and their timestamps and
// returns the current bpm estimate on every call.
type HeartRateEstimator interface {
	Estimate(sample, timestamp float64) float64
}
