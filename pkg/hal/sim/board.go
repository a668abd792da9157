// Package sim provides a simulated robot board modelled on the ATmega
// Timer1 register file driving the two motor bridges.
package sim

import (
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/hal"
)

// Register bits, see ATmega datasheet.
const (
	COM1A1 = 7
	COM1A0 = 6
	COM1B1 = 5
	COM1B0 = 4

	PD4 = 4 // OC1B, right PWM
	PD5 = 5 // OC1A, left PWM
	PD6 = 6 // right direction
	PD7 = 7 // left direction

	// WGM11|WGM10: phase correct PWM, 10 bits.
	tccr1aMode = 0x03
)

// Registers is a snapshot of the simulated register file.
type Registers struct {
	TCCR1A byte
	PORTD  byte
	OCR1A  uint16
	OCR1B  uint16
}

// Sampler produces analog samples for the ADC.
type Sampler func(ch int) uint16

// Board is a simulated hal.Board.
type Board struct {
	// Sampler provides ADC values, defaults to a per-channel ramp.
	Sampler Sampler

	regs  Registers
	temp  byte // TEMP register shared by 16-bit timer accesses
	led   bool
	ramps [8]uint16
	lock  sync.Mutex
}

// NewBoard creates a Board with all outputs off.
func NewBoard() *Board {
	return &Board{regs: Registers{TCCR1A: tccr1aMode}}
}

// Commit implements hal.PWM.
func (b *Board) Commit(ch hal.Channel, duty hal.Duty) error {
	var comBit, pwmPin, dirPin uint
	var ocr *uint16
	switch ch {
	case hal.Left:
		comBit, pwmPin, dirPin, ocr = COM1A0, PD5, PD7, &b.regs.OCR1A
	case hal.Right:
		comBit, pwmPin, dirPin, ocr = COM1B0, PD4, PD6, &b.regs.OCR1B
	default:
		return fmt.Errorf("invalid channel %v", ch)
	}
	if duty.Value > 1023 {
		duty.Value = 1023
	}

	b.lock.Lock()
	defer b.lock.Unlock()
	if !duty.Enabled {
		// normal port operation, OCx disconnected
		b.regs.TCCR1A &^= 3 << comBit
		b.regs.PORTD &^= 1 << pwmPin
	} else {
		// clear OCx on compare match
		b.regs.TCCR1A |= 2 << comBit
		if duty.Reverse {
			b.regs.PORTD |= 1 << dirPin
		} else {
			b.regs.PORTD &^= 1 << dirPin
		}
	}
	// high byte first, the low byte write latches both.
	b.writeHigh(byte(duty.Value >> 8))
	b.writeLow(ocr, byte(duty.Value))
	glog.V(3).Infof("sim: commit %v duty=%d reverse=%v enabled=%v", ch, duty.Value, duty.Reverse, duty.Enabled)
	return nil
}

func (b *Board) writeHigh(v byte) {
	b.temp = v
}

func (b *Board) writeLow(ocr *uint16, v byte) {
	*ocr = uint16(b.temp)<<8 | uint16(v)
}

// ReadAnalog implements hal.ADC.
func (b *Board) ReadAnalog(ch int) (uint16, error) {
	if ch < 0 || ch > 7 {
		return 0, fmt.Errorf("invalid analog channel %d", ch)
	}
	if s := b.Sampler; s != nil {
		return s(ch) & 0x3ff, nil
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	v := b.ramps[ch]
	b.ramps[ch] = (v + uint16(ch) + 1) & 0x3ff
	return v, nil
}

// SetIndicator implements hal.Indicator.
func (b *Board) SetIndicator(on bool) {
	b.lock.Lock()
	changed := b.led != on
	b.led = on
	b.lock.Unlock()
	if changed {
		glog.V(2).Infof("sim: LED %v", on)
	}
}

// Indicator returns the LED state.
func (b *Board) Indicator() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.led
}

// Registers returns a snapshot of the register file.
func (b *Board) Registers() Registers {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.regs
}

// Output decodes the current output of a channel from the registers.
func (b *Board) Output(ch hal.Channel) hal.Duty {
	regs := b.Registers()
	switch ch {
	case hal.Left:
		return hal.Duty{
			Value:   regs.OCR1A,
			Reverse: regs.PORTD&(1<<PD7) != 0,
			Enabled: regs.TCCR1A&(1<<COM1A1) != 0,
		}
	case hal.Right:
		return hal.Duty{
			Value:   regs.OCR1B,
			Reverse: regs.PORTD&(1<<PD6) != 0,
			Enabled: regs.TCCR1A&(1<<COM1B1) != 0,
		}
	}
	return hal.Duty{}
}
