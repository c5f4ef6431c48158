// Package domain contains the core domain entities and value objects for pulseship.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (serial ports, sinks, logging) and
// contains only pure types and invariants.
//
// # Entities
//
//   - [Frame]: one synchronized multi-channel sample set from the sensor
//   - [ChannelKey]: a named channel in a given format (calibrated or raw)
//   - [DeviceState]: the sensor session lifecycle
//   - [Event]: the tagged notification a device emits (state, message, frame)
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Small values that are cheap to copy
//   - Testable without mocks or external systems
package domain
