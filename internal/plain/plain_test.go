package plain

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/model"
)

type memRecorder struct {
	mu       sync.Mutex
	readings []model.ReadingStats
}

func (m *memRecorder) InsertReading(_ context.Context, stats model.ReadingStats) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, stats)
	return int64(len(m.readings)), nil
}

func (m *memRecorder) all() []model.ReadingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ReadingStats(nil), m.readings...)
}

// cancelWriter cancels once a line containing trigger is written.
type cancelWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	trigger string
	cancel  context.CancelFunc
}

func (c *cancelWriter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.Contains(string(p), c.trigger) {
		c.cancel()
	}
	return c.buf.Write(p)
}

func newSession(t *testing.T, wpm int) *engine.Session {
	t.Helper()
	s, err := engine.NewSession(wpm, engine.WithCountdownStep(time.Millisecond))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestRunPrintsCountdownAndWords(t *testing.T) {
	var out bytes.Buffer
	rec := &memRecorder{}
	session := newSession(t, 6000)
	err := Run(t.Context(), &out, session, "alpha beta gamma", Options{Width: 10, Source: "test", Recorder: rec})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := strings.Join([]string{
		"    [3]",
		"    [2]",
		"    [1]",
		"  al[p]ha",
		"  be[t]a",
		"  ga[m]ma",
	}, "\n") + "\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", out.String(), want)
	}
	readings := rec.all()
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if !readings[0].Completed || readings[0].WordsRead != 3 || readings[0].Source != "test" {
		t.Fatalf("unexpected reading %+v", readings[0])
	}
}

func TestRunRejectsEmptyText(t *testing.T) {
	var out bytes.Buffer
	err := Run(t.Context(), &out, newSession(t, 300), " \n\t", Options{Width: 10})
	if !errors.Is(err, engine.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunCancelRecordsInterruptedReading(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	w := &cancelWriter{trigger: "al[p]ha", cancel: cancel}
	rec := &memRecorder{}
	session := newSession(t, 60)

	err := Run(ctx, w, session, "alpha beta gamma", Options{Width: 10, Recorder: rec})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	w.mu.Lock()
	out := w.buf.String()
	w.mu.Unlock()
	if strings.Contains(out, "be[t]a") {
		t.Fatalf("expected playback to stop after alpha, got %q", out)
	}
	readings := rec.all()
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	if readings[0].Completed || readings[0].WordsRead != 1 {
		t.Fatalf("unexpected reading %+v", readings[0])
	}
}

func TestAnchorLine(t *testing.T) {
	if got := AnchorLine("hello", 20); got != "       he[l]lo" {
		t.Fatalf("unexpected line %q", got)
	}
	if got := AnchorLine("extraordinarily", 4); got != "extraor[d]inarily" {
		t.Fatalf("expected no padding for long prefix, got %q", got)
	}
}
