package engine

import (
	"log/slog"
	"time"

	"github.com/verte-zerg/tuirsvp/internal/words"
)

// DefaultCountdownStep is the time between two countdown values.
const DefaultCountdownStep = time.Second

// Snapshot is a read-only view of the session for renderers.
type Snapshot struct {
	Status       Status
	Index        int
	Total        int
	Word         string
	Countdown    int
	HasCountdown bool
	Rate         int
}

// Finished reports whether the last word has been reached.
func (s Snapshot) Finished() bool {
	return s.Status == StatusFinished
}

// CanStart reports whether a toggle would start a countdown.
func (s Snapshot) CanStart() bool {
	if s.Total == 0 {
		return false
	}
	switch s.Status {
	case StatusIdle, StatusPaused, StatusFinished:
		return true
	default:
		return false
	}
}

// ToggleLabel names what a toggle does in the current state.
func (s Snapshot) ToggleLabel() string {
	switch s.Status {
	case StatusCountingDown:
		return "Cancel"
	case StatusPlaying:
		return "Pause"
	case StatusPaused:
		return "Resume"
	case StatusFinished:
		return "Restart"
	default:
		return "Start"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithCountdownStep overrides the time between countdown values.
func WithCountdownStep(step time.Duration) Option {
	return func(s *Session) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithLogger sets the logger used for transition tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is the presentation state machine. It is not safe for concurrent
// use: a single owner (a Bubble Tea model or a Player) drives it.
//
// Every state-changing call returns the timer the owner must arm. Arming a
// timer replaces the previous one, so Fire ignores any ID but the current.
type Session struct {
	doc       string
	words     []string
	index     int
	status    Status
	rate      int
	countdown Countdown
	scheduler Scheduler
	step      time.Duration

	active TimerID
	kind   TimerKind
	delay  time.Duration
	lastID TimerID

	observers []func(Snapshot)
	logger    *slog.Logger
}

// NewSession returns an idle session with no text at the given rate.
func NewSession(wpm int, opts ...Option) (*Session, error) {
	if err := ValidateRate(wpm); err != nil {
		return nil, err
	}
	s := &Session{
		words:  []string{},
		rate:   wpm,
		step:   DefaultCountdownStep,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Observe registers fn to receive a snapshot after every change.
func (s *Session) Observe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current read-only view.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Status: s.status,
		Index:  s.index,
		Total:  len(s.words),
		Rate:   s.rate,
	}
	if s.index >= 0 && s.index < len(s.words) {
		snap.Word = s.words[s.index]
	}
	snap.Countdown, snap.HasCountdown = s.countdown.Value()
	return snap
}

// Document returns the current raw text.
func (s *Session) Document() string {
	return s.doc
}

// Words returns the current word sequence. Callers must not modify it.
func (s *Session) Words() []string {
	return s.words
}

// Rate returns the current rate in words per minute.
func (s *Session) Rate() int {
	return s.rate
}

// ActiveTimer returns the currently armed timer, if any.
func (s *Session) ActiveTimer() Timer {
	if s.active == 0 {
		return Timer{}
	}
	return Timer{ID: s.active, Kind: s.kind, Delay: s.delay}
}

// SetText replaces the document. Any countdown or playback is cancelled and
// the position returns to the first word.
func (s *Session) SetText(text string) Timer {
	s.cancelTimers()
	s.doc = text
	s.words = words.Tokenize(text)
	s.index = 0
	s.setStatus(StatusIdle)
	return Timer{}
}

// Toggle starts, cancels, pauses or resumes depending on the state. Starting
// without words does nothing. Cancelling a countdown rewinds to the first word.
func (s *Session) Toggle() Timer {
	switch s.status {
	case StatusIdle, StatusPaused, StatusFinished:
		if len(s.words) == 0 {
			return Timer{}
		}
		if s.status == StatusFinished {
			s.index = 0
		}
		return s.startCountdown()
	case StatusCountingDown:
		s.cancelTimers()
		s.index = 0
		s.setStatus(StatusIdle)
		return Timer{}
	case StatusPlaying:
		s.cancelTimers()
		s.setStatus(StatusPaused)
		return Timer{}
	default:
		return Timer{}
	}
}

// Escape abandons a countdown or playback and rewinds to the first word.
// It does nothing in other states.
func (s *Session) Escape() Timer {
	if s.status != StatusPlaying && s.status != StatusCountingDown {
		return Timer{}
	}
	s.cancelTimers()
	s.index = 0
	s.setStatus(StatusIdle)
	return Timer{}
}

// SetRate changes the rate. While playing, the playback timer is replaced by
// one at the new interval and the current word is kept. An invalid rate is
// rejected and the previous rate stays in effect.
func (s *Session) SetRate(wpm int) (Timer, error) {
	if err := ValidateRate(wpm); err != nil {
		return Timer{}, err
	}
	s.rate = wpm
	if s.status != StatusPlaying {
		s.notify()
		return Timer{}, nil
	}
	s.scheduler.Start(wpm)
	t := s.arm(TimerPlayback, s.scheduler.Interval())
	s.notify()
	return t, nil
}

// Fire delivers an elapsed timer. Stale or unknown IDs are ignored.
func (s *Session) Fire(id TimerID) Timer {
	if id == 0 || id != s.active {
		s.logger.Debug("ignoring stale timer", "id", id, "active", s.active)
		return Timer{}
	}
	kind := s.kind
	s.disarm()
	switch kind {
	case TimerCountdown:
		resolved := s.countdown.Tick()
		s.notify()
		if !resolved {
			return s.arm(TimerCountdown, s.step)
		}
		s.countdown.Resolve()
		return s.startPlayback()
	case TimerPlayback:
		next, done := Advance(s.index, len(s.words))
		if done {
			s.finish()
			return Timer{}
		}
		s.index = next
		s.notify()
		return s.arm(TimerPlayback, s.scheduler.Interval())
	default:
		return Timer{}
	}
}

func (s *Session) startCountdown() Timer {
	s.cancelTimers()
	s.countdown.Start()
	t := s.arm(TimerCountdown, s.step)
	s.setStatus(StatusCountingDown)
	return t
}

func (s *Session) startPlayback() Timer {
	if len(s.words) <= 1 {
		s.setStatus(StatusPlaying)
		s.finish()
		return Timer{}
	}
	s.scheduler.Start(s.rate)
	t := s.arm(TimerPlayback, s.scheduler.Interval())
	s.setStatus(StatusPlaying)
	return t
}

func (s *Session) finish() {
	s.cancelTimers()
	s.setStatus(StatusFinished)
}

func (s *Session) cancelTimers() {
	s.countdown.Cancel()
	s.scheduler.Stop()
	s.disarm()
}

func (s *Session) arm(kind TimerKind, delay time.Duration) Timer {
	s.lastID++
	s.active = s.lastID
	s.kind = kind
	s.delay = delay
	return Timer{ID: s.active, Kind: kind, Delay: delay}
}

func (s *Session) disarm() {
	s.active = 0
	s.kind = TimerNone
	s.delay = 0
}

func (s *Session) setStatus(status Status) {
	if s.status != status {
		s.logger.Debug("session transition", "from", s.status.String(), "to", status.String(), "index", s.index)
	}
	s.status = status
	s.notify()
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}
