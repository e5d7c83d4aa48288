// Package engine implements the RSVP presentation engine: a countdown, a
// rate-driven playback scheduler and the session state machine that owns them.
package engine

// Status is the lifecycle state of a reading session.
type Status int

const (
	StatusIdle         Status = iota // No countdown or playback; initial state
	StatusCountingDown               // Countdown running before playback
	StatusPlaying                    // Words advancing on the playback timer
	StatusPaused                     // Playback halted, position kept
	StatusFinished                   // Last word reached
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusCountingDown:
		return "counting-down"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}
