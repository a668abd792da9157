// Package hal defines the hardware capabilities the robot core depends on.
package hal

import "fmt"

// Channel identifies a motor PWM channel.
type Channel int

// Motor channels.
const (
	Left Channel = iota
	Right
)

// String implements fmt.Stringer.
func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Duty is the output state of one PWM channel.
type Duty struct {
	// Value is the compare value, 0..1023.
	Value uint16
	// Reverse is the direction bit.
	Reverse bool
	// Enabled connects the channel to the PWM comparator.
	Enabled bool
}

// PWM commits duty values to the motor outputs.
type PWM interface {
	// Commit writes duty value, direction and comparator enable of a
	// channel as one indivisible operation. No other Commit and no
	// indicator change may be observed half-applied.
	Commit(Channel, Duty) error
}

// ADC samples analog inputs.
type ADC interface {
	// ReadAnalog samples the channel (0..7) and returns a 10-bit value.
	ReadAnalog(ch int) (uint16, error)
}

// Indicator signals the connection state (the status LED).
type Indicator interface {
	SetIndicator(on bool)
}

// IndicatorFunc is the func form of Indicator.
type IndicatorFunc func(on bool)

// SetIndicator implements Indicator.
func (f IndicatorFunc) SetIndicator(on bool) {
	f(on)
}

// Indicators fans out to multiple indicators.
type Indicators []Indicator

// SetIndicator implements Indicator.
func (s Indicators) SetIndicator(on bool) {
	for _, ind := range s {
		if ind != nil {
			ind.SetIndicator(on)
		}
	}
}

// Board is the full capability set of a robot board.
type Board interface {
	PWM
	ADC
	Indicator
}
