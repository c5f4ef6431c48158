package domain

// DeviceState is the lifecycle state of a sensor session.
type DeviceState int32

const (
	// StateNone means disconnected or idle.
	StateNone DeviceState = iota
	StateConnecting
	StateConnected
	StateStreaming
)

// String returns a human-readable representation of the state.
func (s DeviceState) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateStreaming:
		return "Streaming"
	default:
		return "Unknown"
	}
}

// HardwareVersion identifies the sensor hardware generation.
type HardwareVersion int

const (
	HardwareUnknown HardwareVersion = iota
	HardwareShimmer2R
	HardwareShimmer3
)

// String returns the lowercase name used in configuration.
func (v HardwareVersion) String() string {
	switch v {
	case HardwareShimmer2R:
		return "shimmer2r"
	case HardwareShimmer3:
		return "shimmer3"
	default:
		return "unknown"
	}
}

// ParseHardwareVersion maps a configuration name to a HardwareVersion.
func ParseHardwareVersion(s string) (HardwareVersion, bool) {
	switch s {
	case "shimmer3":
		return HardwareShimmer3, true
	case "shimmer2r":
		return HardwareShimmer2R, true
	default:
		return HardwareUnknown, false
	}
}

// Sensor bits enabled on the device.
const (
	SensorAccel  uint32 = 0x80
	SensorGSR    uint32 = 0x04
	SensorIntA13 uint32 = 0x800000
)

// DefaultSensors is accelerometer, GSR and the PPG input on internal ADC A13.
const DefaultSensors = SensorAccel | SensorGSR | SensorIntA13
