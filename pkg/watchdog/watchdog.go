package watchdog

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/hal"
)

// Defaults give a 1s watchdog period.
const (
	DefaultSubTick   = 20 * time.Millisecond
	DefaultThreshold = 50
)

// Stopper forces the motors to zero.
type Stopper interface {
	Stop() error
}

// DisconnectedMsg is posted to the loop when the watchdog drops the
// connection.
type DisconnectedMsg struct {
	Time time.Time
}

// Watchdog declares the link dead after a period without activity.
// It counts sub-ticks and performs a check every Threshold sub-ticks.
type Watchdog struct {
	State     *ConnState
	Stopper   Stopper
	Indicator hal.Indicator
	SubTick   time.Duration
	Threshold int

	subTicks int
}

// New creates a Watchdog with default timing.
func New(state *ConnState, stopper Stopper, indicator hal.Indicator) *Watchdog {
	return &Watchdog{
		State:     state,
		Stopper:   stopper,
		Indicator: indicator,
		SubTick:   DefaultSubTick,
		Threshold: DefaultThreshold,
	}
}

// Period is the effective watchdog period.
func (w *Watchdog) Period() time.Duration {
	return w.SubTick * time.Duration(w.Threshold)
}

// Tick performs one watchdog check. It returns true if the connection
// was dropped by this check.
func (w *Watchdog) Tick() (dropped bool) {
	_, dropped = w.State.Expire(w.silence)
	return dropped
}

// silence runs with the state held, a speed command can't be
// committed between the drop and the stop.
func (w *Watchdog) silence(dropped bool) {
	if dropped {
		glog.Warningf("watchdog: no activity in %v, connection lost", w.Period())
	}
	// zero is forced on every silent period, not only on the first.
	if err := w.Stopper.Stop(); err != nil {
		glog.Errorf("watchdog: stop error: %v", err)
	}
	if w.Indicator != nil {
		w.Indicator.SetIndicator(false)
	}
}

// Control implements Controller.
func (w *Watchdog) Control(cc fx.ControlContext) error {
	if w.subTicks++; w.subTicks < w.Threshold {
		return nil
	}
	w.subTicks = 0
	if w.Tick() {
		cc.PostMessage(&DisconnectedMsg{Time: cc.Time()})
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (w *Watchdog) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSafety, w)
}

// NewLoop creates a Loop ticking at SubTick with the watchdog installed.
func (w *Watchdog) NewLoop() *fx.Loop {
	l := fx.NewLoop()
	if w.SubTick > 0 {
		l.Interval = w.SubTick
	}
	return l.Add(w)
}
