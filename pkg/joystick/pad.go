package joystick

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/joystick/device"
	"github.com/robotalks/alfred/pkg/motor"
)

// Stick axes, the d-pad axes are accepted as alternatives.
const (
	AxisX    = 0
	AxisY    = 1
	AxisPadX = 6
	AxisPadY = 7
)

// DefaultRefresh keeps the robot watchdog fed while driving.
const DefaultRefresh = 250 * time.Millisecond

// Commander sends commands to the robot, implemented by link.Client.
type Commander interface {
	SetSpeed(ctx context.Context, left, right int) error
	Reset(ctx context.Context) error
}

// Pad drives the robot from joystick events. The current speed is
// resent every Refresh and the robot is reset when the device is lost
// or the Pad stops.
type Pad struct {
	Robot    Commander
	Open     device.OpenFunc
	Refresh  time.Duration
	Deadzone int
	Verbose  bool

	lock sync.Mutex
	x, y int
}

// NewPad creates a Pad.
func NewPad(robot Commander, open device.OpenFunc) *Pad {
	return &Pad{Robot: robot, Open: open, Refresh: DefaultRefresh}
}

// Name implements Named.
func (p *Pad) Name() string {
	return "joystick"
}

// Speed returns the wheel speeds for the current stick position.
func (p *Pad) Speed() motor.Speed {
	p.lock.Lock()
	defer p.lock.Unlock()
	return Mix(p.x, p.y)
}

// HandleEvent updates the stick position. It returns true if the
// position changed.
func (p *Pad) HandleEvent(ev device.Event) bool {
	if p.Verbose {
		switch e := ev.(type) {
		case device.AxisEvent:
			glog.Infof("joystick: axis %d: %d", e.Index(), e.Value())
		case device.ButtonEvent:
			glog.Infof("joystick: button %d: %v", e.Index(), e.Pressed())
		}
	}
	axis, ok := ev.(device.AxisEvent)
	if !ok {
		return false
	}
	pct := AxisPercent(axis.Value(), p.Deadzone)
	p.lock.Lock()
	defer p.lock.Unlock()
	x, y := p.x, p.y
	switch axis.Index() {
	case AxisX, AxisPadX:
		p.x = pct
	case AxisY, AxisPadY:
		// the device reports up as negative.
		p.y = -pct
	}
	return x != p.x || y != p.y
}

func (p *Pad) center() {
	p.lock.Lock()
	p.x, p.y = 0, 0
	p.lock.Unlock()
}

func (p *Pad) drive(ctx context.Context) {
	speed := p.Speed()
	if err := p.Robot.SetSpeed(ctx, speed.Left, speed.Right); err != nil {
		glog.Warningf("joystick: set speed %d,%d error: %v", speed.Left, speed.Right, err)
	}
}

func (p *Pad) reset(ctx context.Context) {
	if err := p.Robot.Reset(ctx); err != nil {
		glog.Warningf("joystick: reset error: %v", err)
	}
}

// Run implements Runnable.
func (p *Pad) Run(ctx context.Context) error {
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		p.reset(stopCtx)
	}()

	refresh := p.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	var dev device.Device
	var events <-chan device.Event
	defer func() {
		if dev != nil {
			dev.Close()
		}
	}()
	retry := time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retry:
			retry = nil
			var err error
			if dev, err = p.Open(); err != nil || dev == nil {
				if err != nil {
					glog.Warningf("joystick: open error: %v", err)
				}
				dev, retry = nil, time.After(time.Second)
				continue
			}
			glog.Infof("joystick: %d %q opened", dev.Index(), dev.Name())
			events = poll(ctx.Done(), dev)
		case ev, ok := <-events:
			if !ok {
				glog.Warning("joystick: device lost")
				dev.Close()
				dev, events = nil, nil
				p.center()
				p.reset(ctx)
				retry = time.After(time.Second)
				continue
			}
			if p.HandleEvent(ev) {
				p.drive(ctx)
			}
		case <-ticker.C:
			if events != nil {
				p.drive(ctx)
			}
		}
	}
}

// poll reads events from dev until it fails or done is closed.
func poll(done <-chan struct{}, dev device.Device) <-chan device.Event {
	ch := make(chan device.Event, 16)
	go func() {
		defer close(ch)
		for {
			ev, err := dev.ReadEvent()
			if err != nil {
				glog.V(2).Infof("joystick: read error: %v", err)
				return
			}
			select {
			case ch <- ev:
			case <-done:
				return
			}
		}
	}()
	return ch
}
