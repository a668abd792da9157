// Package watchdog stops the robot when the link goes silent.
package watchdog

import "sync"

// ConnState is the connection state shared by the receive path and the
// watchdog tick.
type ConnState struct {
	connected bool
	activity  bool
	lock      sync.Mutex
}

// MarkActivity records a received line and marks the connection live.
// It returns true if the connection was dead before.
func (s *ConnState) MarkActivity() (revived bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	revived = !s.connected
	s.connected, s.activity = true, true
	return
}

// Connected reports whether the connection is live.
func (s *ConnState) Connected() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.connected
}

// Disconnect marks the connection dead.
// It returns true if the connection was live before.
func (s *ConnState) Disconnect() (wasConnected bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	wasConnected, s.connected = s.connected, false
	return
}

// Expire ends the current watchdog period: if no activity was recorded
// the connection is marked dead and onSilent runs before any new line can
// revive it. The activity flag is cleared in either case. silent reports
// no activity was seen, dropped reports the connection was live before.
func (s *ConnState) Expire(onSilent func(dropped bool)) (silent, dropped bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if silent = !s.activity; silent {
		dropped, s.connected = s.connected, false
		if onSilent != nil {
			onSilent(dropped)
		}
	}
	s.activity = false
	return
}

// WhileConnected runs fn only if the connection is live, holding the
// state so the watchdog can't drop the connection while fn runs.
func (s *ConnState) WhileConnected(fn func() error) (ran bool, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.connected {
		return false, nil
	}
	return true, fn()
}
