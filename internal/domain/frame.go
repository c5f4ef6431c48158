package domain

// Signal formats reported by the sensor driver.
const (
	FormatCAL = "CAL"
	FormatRAW = "RAW"
)

// Channel names used by the pipeline.
const (
	ChannelAccelX          = "Low Noise Accelerometer X"
	ChannelAccelY          = "Low Noise Accelerometer Y"
	ChannelAccelZ          = "Low Noise Accelerometer Z"
	ChannelGSR             = "GSR"
	ChannelInternalADCA13  = "Internal ADC A13"
	ChannelInternalADCA14  = "Internal ADC A14"
	ChannelSystemTimestamp = "System Timestamp"
)

// ChannelKey identifies a channel by name and format.
type ChannelKey struct {
	Name   string
	Format string
}

// String returns "Name (Format)".
func (k ChannelKey) String() string {
	return k.Name + " (" + k.Format + ")"
}

// Reading is a single channel value with the unit supplied by the driver.
type Reading struct {
	Value float64
	Unit  string
}

// Channel is one named entry of a Frame.
type Channel struct {
	Key ChannelKey
	Reading
}

// Frame is one synchronized sample set. Frames are handled synchronously and
// must not be retained past the handling call.
type Frame struct {
	Channels []Channel
}

// Index returns the position of key within the frame.
func (f *Frame) Index(key ChannelKey) (int, bool) {
	for i, c := range f.Channels {
		if c.Key == key {
			return i, true
		}
	}
	return -1, false
}

// At returns the reading at position i.
// Positions come from Index on a frame with the same layout.
func (f *Frame) At(i int) Reading {
	return f.Channels[i].Reading
}

// Len returns the number of channels in the frame.
func (f *Frame) Len() int {
	return len(f.Channels)
}

// CandidatePort is an endpoint the arbiter may try to connect to.
type CandidatePort struct {
	Name string
}
