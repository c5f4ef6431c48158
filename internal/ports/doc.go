// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the acquisition core and the outside
// world: the sensor driver, the serial port enumerator, the telemetry sink and
// the signal-processing primitives. They describe what the core needs without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Device]: a sensor driver (connect, stream, disconnect, events)
//   - [PortLister]: enumerates candidate endpoints
//   - [DeviceFactory]: builds a Device for one candidate endpoint
//   - [Sink]: push-only telemetry outlet
//   - [Filter]: stateful per-sample digital filter
//   - [HeartRateEstimator]: stateful per-sample bpm estimator
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app, internal/arbiter, internal/session,
// internal/pipeline) depends only on these interfaces. Infrastructure adapters
// (internal/adapters) implement them with concrete drivers and clients.
package ports
