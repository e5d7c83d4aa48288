package engine

import (
	"errors"
	"fmt"
	"time"
)

// MaxRate is the highest accepted rate; faster rates would tick more often than once per millisecond.
const MaxRate = 60000

var (
	// ErrRateOutOfRange is returned for rates outside [1, MaxRate].
	ErrRateOutOfRange = errors.New("rate out of range")
	// ErrEmptyInput is returned when starting playback without any words.
	ErrEmptyInput = errors.New("no words to present")
)

// ValidateRate checks that wpm can be scheduled.
func ValidateRate(wpm int) error {
	if wpm < 1 || wpm > MaxRate {
		return fmt.Errorf("%w: %d wpm (must be 1-%d)", ErrRateOutOfRange, wpm, MaxRate)
	}
	return nil
}

// Interval returns the time between two words at wpm words per minute.
func Interval(wpm int) time.Duration {
	if wpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(wpm)
}

// Scheduler tracks the playback schedule. The session arms the actual timer.
type Scheduler struct {
	interval time.Duration
	active   bool
}

// Start activates the schedule at the given rate. Any previous schedule is replaced.
func (s *Scheduler) Start(wpm int) {
	s.interval = Interval(wpm)
	s.active = true
}

// Stop deactivates the schedule.
func (s *Scheduler) Stop() {
	s.active = false
}

// Active reports whether playback is scheduled.
func (s *Scheduler) Active() bool {
	return s.active
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Advance computes the index after one tick. It reports done when index is
// already at or past the last word; the index is then returned unchanged.
func Advance(index, length int) (next int, done bool) {
	if index >= length-1 {
		return index, true
	}
	return index + 1, false
}
