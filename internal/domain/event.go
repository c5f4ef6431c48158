package domain

// Event is a notification emitted by a device.
// The concrete type is one of StateChanged, Notification or DataFrame.
type Event interface {
	isEvent()
}

// StateChanged reports a device lifecycle transition.
type StateChanged struct {
	State DeviceState
}

// Notification is an advisory message from the driver.
type Notification struct {
	Message string
}

// DataFrame carries one frame of samples.
type DataFrame struct {
	Frame Frame
}

func (StateChanged) isEvent() {}
func (Notification) isEvent() {}
func (DataFrame) isEvent()    {}
