// Package joystick drives the robot with a joystick over the link.
package joystick

import (
	"github.com/robotalks/alfred/pkg/joystick/device"
	"github.com/robotalks/alfred/pkg/motor"
)

// Mix converts a stick position in percent to differential wheel
// speeds: x turns, y drives forward.
func Mix(x, y int) motor.Speed {
	return motor.Speed{
		Left:  clamp(y + x),
		Right: clamp(y - x),
	}
}

func clamp(v int) int {
	switch {
	case v > motor.MaxSpeed:
		return motor.MaxSpeed
	case v < -motor.MaxSpeed:
		return -motor.MaxSpeed
	}
	return v
}

// AxisPercent scales a raw axis value to percent. Values within
// deadzone percent of the center read as zero.
func AxisPercent(val, deadzone int) int {
	pct := clamp(val * motor.MaxSpeed / device.AxisMax)
	if pct < deadzone && pct > -deadzone {
		return 0
	}
	return pct
}
