// Package device reads Linux joystick devices.
package device

import (
	"errors"
	"io"
)

// AxisMax is the magnitude of a fully deflected axis.
const AxisMax = 32767

// ErrUnsupported is returned on platforms without joystick support.
var ErrUnsupported = errors.New("joystick not supported on this platform")

// Event is an axis or button change.
type Event interface {
	// IsInit indicates the event reports the initial state.
	IsInit() bool
	// Index is the axis or button number.
	Index() int
}

// AxisEvent is an axis position in [-AxisMax, AxisMax].
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent is a button state.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks until the next event.
	ReadEvent() (Event, error)
}

// OpenFunc opens a joystick device.
type OpenFunc func() (Device, error)

// Opener returns an OpenFunc for the device at index, or detects the
// first available device when index is negative.
func Opener(index int) OpenFunc {
	return func() (Device, error) {
		if index >= 0 {
			return Open(index)
		}
		return DetectAndOpen(0)
	}
}
