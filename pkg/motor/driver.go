// Package motor translates speed percentages into PWM duty cycles.
package motor

import (
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/hal"
)

// MaxDuty is the top of the 10-bit phase correct PWM.
const MaxDuty uint16 = 1023

// MaxSpeed is the speed percentage mapped to MaxDuty.
const MaxSpeed = 100

// Speed is the requested speed of both wheels in percent.
type Speed struct {
	Left  int
	Right int
}

// Translate maps a signed speed percentage to a duty.
// Zero disables the comparator and leaves Reverse false; the Driver
// keeps the previous direction bit in that case.
func Translate(pct int) hal.Duty {
	if pct == 0 {
		return hal.Duty{}
	}
	duty := hal.Duty{Enabled: true}
	if pct < 0 {
		duty.Reverse = true
		// clamped before negating, -math.MinInt overflows.
		if pct < -MaxSpeed {
			pct = -MaxSpeed
		}
		pct = -pct
	}
	if pct > MaxSpeed {
		pct = MaxSpeed
	}
	duty.Value = uint16(int(MaxDuty) * pct / MaxSpeed)
	return duty
}

// Driver drives both motors through a hal.PWM.
type Driver struct {
	pwm     hal.PWM
	outputs [2]hal.Duty
	lock    sync.Mutex
}

// NewDriver creates a Driver.
func NewDriver(pwm hal.PWM) *Driver {
	return &Driver{pwm: pwm}
}

// SetSpeed sets both wheel speeds.
func (d *Driver) SetSpeed(left, right int) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	var errs fx.AggregatedError
	errs.Add(d.commit(hal.Left, Translate(left)), d.commit(hal.Right, Translate(right)))
	return errs.Aggregate()
}

// Set is SetSpeed taking a Speed.
func (d *Driver) Set(s Speed) error {
	return d.SetSpeed(s.Left, s.Right)
}

// Stop sets both wheels to zero.
func (d *Driver) Stop() error {
	return d.SetSpeed(0, 0)
}

// Outputs returns the last committed duties.
func (d *Driver) Outputs() (left, right hal.Duty) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.outputs[hal.Left], d.outputs[hal.Right]
}

func (d *Driver) commit(ch hal.Channel, duty hal.Duty) error {
	if !duty.Enabled {
		duty.Reverse = d.outputs[ch].Reverse
	}
	if err := d.pwm.Commit(ch, duty); err != nil {
		glog.Errorf("motor: commit %v error: %v", ch, err)
		return err
	}
	d.outputs[ch] = duty
	return nil
}
