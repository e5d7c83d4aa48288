package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

var (
	// ErrStopped is returned by intents sent to a Player whose Run has returned.
	ErrStopped = errors.New("player stopped")
	// ErrAlreadyRun is returned by a second call to Run.
	ErrAlreadyRun = errors.New("player already run")
)

const defaultUpdateBuffer = 64

type command struct {
	apply func(*Session) error
	reply chan error
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithUpdateBuffer sets the capacity of the Updates channel.
func WithUpdateBuffer(n int) PlayerOption {
	return func(p *Player) {
		if n > 0 {
			p.updates = make(chan Snapshot, n)
		}
	}
}

// WithPlayerLogger sets the logger for the player loop.
func WithPlayerLogger(logger *slog.Logger) PlayerOption {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Player drives a Session with wall-clock timers from a single goroutine.
// Intents are serialized through a command channel, so the session is only
// ever touched by Run.
type Player struct {
	session *Session
	cmds    chan command
	fires   chan TimerID
	updates chan Snapshot
	done    chan struct{}
	logger  *slog.Logger
	started atomic.Bool

	timer *time.Timer
	armed TimerID
}

// NewPlayer wraps session. The session must not be used directly afterwards.
func NewPlayer(session *Session, opts ...PlayerOption) *Player {
	p := &Player{
		session: session,
		cmds:    make(chan command),
		fires:   make(chan TimerID, 1),
		updates: make(chan Snapshot, defaultUpdateBuffer),
		done:    make(chan struct{}),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Updates delivers a snapshot after every change. It is closed when Run
// returns. Drain it from a goroutine that does not also send intents.
func (p *Player) Updates() <-chan Snapshot {
	return p.updates
}

// Run owns the session until ctx is cancelled. A Player runs at most once.
func (p *Player) Run(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	p.session.Observe(func(snap Snapshot) {
		select {
		case p.updates <- snap:
		case <-ctx.Done():
		}
	})
	defer close(p.updates)
	defer close(p.done)
	defer p.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-p.cmds:
			err := cmd.apply(p.session)
			p.syncTimer(ctx)
			cmd.reply <- err
		case id := <-p.fires:
			p.session.Fire(id)
			p.syncTimer(ctx)
		}
	}
}

// Toggle starts, cancels, pauses or resumes playback.
func (p *Player) Toggle(ctx context.Context) error {
	return p.do(ctx, func(s *Session) error {
		if len(s.Words()) == 0 {
			return ErrEmptyInput
		}
		s.Toggle()
		return nil
	})
}

// SetText replaces the document and resets the session.
func (p *Player) SetText(ctx context.Context, text string) error {
	return p.do(ctx, func(s *Session) error {
		s.SetText(text)
		return nil
	})
}

// Escape abandons a countdown or playback.
func (p *Player) Escape(ctx context.Context) error {
	return p.do(ctx, func(s *Session) error {
		s.Escape()
		return nil
	})
}

// SetRate changes the playback rate.
func (p *Player) SetRate(ctx context.Context, wpm int) error {
	return p.do(ctx, func(s *Session) error {
		_, err := s.SetRate(wpm)
		return err
	})
}

// Snapshot returns the current session view.
func (p *Player) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := p.do(ctx, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

func (p *Player) do(ctx context.Context, fn func(*Session) error) error {
	cmd := command{apply: fn, reply: make(chan error, 1)}
	select {
	case p.cmds <- cmd:
	case <-p.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// syncTimer makes the wall-clock timer match the session's active timer.
func (p *Player) syncTimer(ctx context.Context) {
	want := p.session.ActiveTimer()
	if want.ID == p.armed {
		return
	}
	p.stopTimer()
	if !want.Armed() {
		return
	}
	p.armed = want.ID
	id := want.ID
	p.logger.Debug("arming timer", "id", id, "kind", want.Kind.String(), "delay", want.Delay)
	p.timer = time.AfterFunc(want.Delay, func() {
		select {
		case p.fires <- id:
		case <-ctx.Done():
		}
	})
}

func (p *Player) stopTimer() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.armed = 0
}
