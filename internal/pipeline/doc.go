// Package pipeline implements the per-frame signal path.
//
// For every frame delivered by a device session the pipeline:
//
//  1. resolves channel positions on the first frame only ([Indexer])
//  2. extracts the raw channels at the cached positions
//  3. pushes the raw GSR value to the telemetry sink ([Publisher])
//  4. runs PPG through low-pass then high-pass filtering and the heart-rate
//     estimator ([Chain])
//  5. prints a status line when the frame count is a multiple of the
//     sampling rate ([Reporter])
//
// All mutable per-session data lives in [State], which the caller owns and
// passes to [Pipeline.Handle]. Frames must be handled one at a time in
// arrival order.
package pipeline
