package engine

import "time"

// TimerID identifies one armed timer. Zero means no timer.
type TimerID uint64

// TimerKind tells which controller a timer belongs to.
type TimerKind int

const (
	TimerNone TimerKind = iota
	TimerCountdown
	TimerPlayback
)

// String returns the string representation of the kind.
func (k TimerKind) String() string {
	switch k {
	case TimerCountdown:
		return "countdown"
	case TimerPlayback:
		return "playback"
	default:
		return "none"
	}
}

// Timer is a request to fire Session.Fire(ID) after Delay. At most one timer
// is current; arming a new one makes every earlier ID stale.
type Timer struct {
	ID    TimerID
	Kind  TimerKind
	Delay time.Duration
}

// Armed reports whether t asks for a timer at all.
func (t Timer) Armed() bool {
	return t.ID != 0
}
