package stats

import (
	"time"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/model"
)

// Tracker turns session snapshots into reading records. A reading starts the
// first time playback begins and ends when the session finishes, returns to
// idle, or is flushed on exit. Only time spent playing counts as duration.
type Tracker struct {
	source string
	now    func() time.Time

	active       bool
	startedAt    time.Time
	playingSince time.Time
	played       time.Duration
	startIndex   int
	maxIndex     int
	total        int
	rate         int
}

// NewTracker returns a tracker labelling readings with source. A nil now uses time.Now.
func NewTracker(source string, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{source: source, now: now}
}

// SetSource changes the label used for the next reading.
func (t *Tracker) SetSource(source string) {
	t.source = source
}

// Observe records snap and returns a reading when snap ends one.
func (t *Tracker) Observe(snap engine.Snapshot) (model.ReadingStats, bool) {
	now := t.now()
	if snap.Status != engine.StatusPlaying {
		t.pause(now)
	}
	switch snap.Status {
	case engine.StatusPlaying:
		if !t.active {
			t.active = true
			t.startedAt = now
			t.played = 0
			t.startIndex = snap.Index
			t.maxIndex = snap.Index
		}
		if t.playingSince.IsZero() {
			t.playingSince = now
		}
		t.maxIndex = max(t.maxIndex, snap.Index)
		t.total = snap.Total
		t.rate = snap.Rate
	case engine.StatusFinished:
		if t.active {
			t.maxIndex = max(t.maxIndex, snap.Index)
			t.total = snap.Total
			return t.end(now, true), true
		}
	case engine.StatusIdle:
		if t.active {
			return t.end(now, false), true
		}
	}
	return model.ReadingStats{}, false
}

// Flush ends a reading in progress, for example when the program exits.
func (t *Tracker) Flush() (model.ReadingStats, bool) {
	if !t.active {
		return model.ReadingStats{}, false
	}
	now := t.now()
	t.pause(now)
	return t.end(now, false), true
}

func (t *Tracker) pause(now time.Time) {
	if t.playingSince.IsZero() {
		return
	}
	t.played += now.Sub(t.playingSince)
	t.playingSince = time.Time{}
}

func (t *Tracker) end(now time.Time, completed bool) model.ReadingStats {
	stats := model.ReadingStats{
		StartedAt:  t.startedAt,
		EndedAt:    now,
		Source:     t.source,
		WordsTotal: t.total,
		WordsRead:  max(0, min(t.maxIndex+1, t.total)-t.startIndex),
		WPM:        t.rate,
		DurationMs: t.played.Milliseconds(),
		Completed:  completed,
	}
	t.active = false
	t.playingSince = time.Time{}
	t.played = 0
	t.startIndex = 0
	t.maxIndex = 0
	return stats
}
