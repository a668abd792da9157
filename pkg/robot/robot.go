// Package robot implements the command dispatcher of the ALFRED robot.
package robot

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/motor"
	"github.com/robotalks/alfred/pkg/watchdog"
)

// Analog channels available for the scope command.
const (
	MinAnalogChannel = 0
	MaxAnalogChannel = 7
)

var (
	// ErrChannelRange indicates the analog channel is out of range.
	ErrChannelRange = errors.New("analog channel out of range")
	// ErrDisconnected indicates the connection dropped before a
	// command could be applied.
	ErrDisconnected = errors.New("disconnected")
)

// Observer is notified after each dispatched command.
type Observer interface {
	CommandHandled(cmd *link.Command, resp string, err error)
}

// Robot receives command lines and drives the motors.
type Robot struct {
	Link      *link.Receiver
	Motors    *motor.Driver
	State     *watchdog.ConnState
	ADC       hal.ADC
	Indicator hal.Indicator
	Observer  Observer

	// Identity is the reply of the identify command.
	Identity string
	// SampleInterval paces the scope stream, 0 streams as fast as
	// the link accepts.
	SampleInterval time.Duration
}

// New creates a Robot on a board.
func New(recv *link.Receiver, board hal.Board, state *watchdog.ConnState) *Robot {
	return &Robot{
		Link:      recv,
		Motors:    motor.NewDriver(board),
		State:     state,
		ADC:       board,
		Indicator: board,
		Identity:  link.RespIdentify,
	}
}

// Name implements Named.
func (r *Robot) Name() string {
	return "robot"
}

// Run implements Runnable. It reads and dispatches lines until the link
// fails or ctx is done.
func (r *Robot) Run(ctx context.Context) error {
	for {
		line, err := r.Link.ReadLine(ctx)
		if err != nil {
			return err
		}
		if r.State.MarkActivity() {
			glog.Info("robot: connected")
		}
		if r.Indicator != nil {
			r.Indicator.SetIndicator(true)
		}
		if err = r.Dispatch(ctx, line); err != nil {
			return err
		}
	}
}

// Dispatch handles one line. Only failures writing to the link are
// returned, command failures are reported on the link.
func (r *Robot) Dispatch(ctx context.Context, line link.Line) error {
	glog.V(2).Infof("robot: dispatch %s", line)
	cmd, err := link.Parse(line.Data)
	var resp string
	switch cmd.Opcode {
	case link.OpPing:
		resp = link.RespPing
	case link.OpScope:
		if err == nil && (cmd.Args[0] < MinAnalogChannel || cmd.Args[0] > MaxAnalogChannel) {
			err = ErrChannelRange
		}
		if err != nil {
			resp = link.RespScopeError
			break
		}
		r.notify(cmd, "", nil)
		return r.stream(ctx, cmd.Args[0])
	case link.OpSetSpeed:
		if err == nil {
			err = r.setSpeed(cmd.Args[0], cmd.Args[1])
		}
		if err != nil {
			resp = link.RespSpeedError
		} else {
			resp = link.RespSpeedSet
		}
	case link.OpIdentify:
		resp = r.Identity
	case link.OpReset:
		r.Reset()
		resp = link.RespReset
	default:
		resp = link.RespNotRecognised
	}
	if err != nil {
		glog.V(2).Infof("robot: %s: %v", line, err)
	}
	r.notify(cmd, resp, err)
	return r.Link.WriteLine(resp)
}

// Reset stops the motors and marks the connection dead.
func (r *Robot) Reset() {
	r.State.Disconnect()
	if err := r.Motors.Stop(); err != nil {
		glog.Errorf("robot: stop error: %v", err)
	}
}

func (r *Robot) setSpeed(left, right int) error {
	ran, err := r.State.WhileConnected(func() error {
		return r.Motors.SetSpeed(left, right)
	})
	if err == nil && !ran {
		err = ErrDisconnected
	}
	return err
}

// stream samples an analog channel until a byte arrives on the link,
// the connection drops or ctx is done.
func (r *Robot) stream(ctx context.Context, ch int) error {
	glog.V(2).Infof("robot: streaming analog channel %d", ch)
	var count int
	defer func() {
		glog.V(2).Infof("robot: streamed %d samples from channel %d", count, ch)
	}()
	for r.State.Connected() && !r.Link.Available() && ctx.Err() == nil {
		val, err := r.ADC.ReadAnalog(ch)
		if err != nil {
			glog.Errorf("robot: analog read %d error: %v", ch, err)
			return nil
		}
		if err = r.Link.WriteLine(strconv.Itoa(int(val))); err != nil {
			return err
		}
		count++
		if r.SampleInterval <= 0 {
			runtime.Gosched()
			continue
		}
		select {
		case <-ctx.Done():
		case <-r.Link.Arrived():
		case <-time.After(r.SampleInterval):
		}
	}
	return nil
}

func (r *Robot) notify(cmd *link.Command, resp string, err error) {
	if o := r.Observer; o != nil {
		o.CommandHandled(cmd, resp, err)
	}
}
