// Package dsp provides the signal-processing primitives the pipeline composes:
// a windowed-sinc FIR filter (low-pass or high-pass) and a rolling PPG
// heart-rate estimator.
//
// Both are stateful and not safe for concurrent use; each is fed one sample
// at a time in arrival order by a single goroutine.
package dsp
