package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/model"
	"github.com/verte-zerg/tuirsvp/internal/store"
)

func newTestModel(t *testing.T, text string, st *store.Store) *Model {
	t.Helper()
	cfg := model.Config{
		WPM:           300,
		Rates:         []int{400, 200, 300, 300},
		CountdownStep: 10 * time.Millisecond,
		Source:        "test",
	}
	m, err := NewModel(cfg, text, st, nil)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	return m
}

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func space() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// fireActive delivers the tick for the currently armed timer.
func fireActive(t *testing.T, m *Model) tea.Cmd {
	t.Helper()
	active := m.session.ActiveTimer()
	if !active.Armed() {
		t.Fatalf("expected an armed timer")
	}
	_, cmd := m.Update(tickMsg{id: active.ID})
	return cmd
}

func TestToggleCountsDownAndPlays(t *testing.T) {
	m := newTestModel(t, "alpha beta gamma", nil)
	if cmd := press(m, space()); cmd == nil {
		t.Fatalf("expected countdown tick command")
	}
	if snap := m.session.Snapshot(); snap.Status != engine.StatusCountingDown || snap.Countdown != engine.CountdownStart {
		t.Fatalf("expected countdown from %d, got %+v", engine.CountdownStart, snap)
	}
	for i := 0; i < engine.CountdownStart; i++ {
		fireActive(t, m)
	}
	snap := m.session.Snapshot()
	if snap.Status != engine.StatusPlaying || snap.Word != "alpha" {
		t.Fatalf("expected playing alpha, got %+v", snap)
	}
	fireActive(t, m)
	fireActive(t, m)
	snap = m.session.Snapshot()
	if snap.Status != engine.StatusPlaying || snap.Word != "gamma" {
		t.Fatalf("expected last word shown while playing, got %+v", snap)
	}
	fireActive(t, m)
	snap = m.session.Snapshot()
	if snap.Status != engine.StatusFinished || snap.Word != "gamma" {
		t.Fatalf("expected finished on gamma, got %+v", snap)
	}
	if m.session.ActiveTimer().Armed() {
		t.Fatalf("expected no timer after finishing")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	m := newTestModel(t, "alpha beta gamma", nil)
	press(m, space())
	stale := m.session.ActiveTimer().ID
	press(m, space())
	press(m, space())
	if m.session.ActiveTimer().ID == stale {
		t.Fatalf("expected a fresh timer after restarting the countdown")
	}
	before := m.session.Snapshot()
	if _, cmd := m.Update(tickMsg{id: stale}); cmd != nil {
		t.Fatalf("expected no command for stale tick")
	}
	if after := m.session.Snapshot(); after != before {
		t.Fatalf("stale tick changed state: %+v -> %+v", before, after)
	}
}

func TestRateKeysStepThroughRates(t *testing.T) {
	m := newTestModel(t, "alpha beta", nil)
	press(m, runeKey('+'))
	if got := m.session.Rate(); got != 400 {
		t.Fatalf("expected 400 wpm, got %d", got)
	}
	press(m, runeKey('+'))
	if got := m.session.Rate(); got != 400 {
		t.Fatalf("expected rate to stay at top, got %d", got)
	}
	press(m, runeKey('-'))
	press(m, runeKey('-'))
	press(m, runeKey('-'))
	if got := m.session.Rate(); got != 200 {
		t.Fatalf("expected 200 wpm, got %d", got)
	}
}

func TestNextRate(t *testing.T) {
	rates := []int{200, 300, 400}
	if r, ok := nextRate(rates, 250, 1); !ok || r != 300 {
		t.Fatalf("expected 300, got %d %v", r, ok)
	}
	if r, ok := nextRate(rates, 250, -1); !ok || r != 200 {
		t.Fatalf("expected 200, got %d %v", r, ok)
	}
	if _, ok := nextRate(rates, 200, -1); ok {
		t.Fatalf("expected no slower rate")
	}
}

func TestEditorChangeResetsSession(t *testing.T) {
	m := newTestModel(t, "alpha beta gamma", nil)
	press(m, space())
	for i := 0; i < engine.CountdownStart; i++ {
		fireActive(t, m)
	}
	fireActive(t, m)
	if snap := m.session.Snapshot(); snap.Status != engine.StatusPlaying || snap.Index != 1 {
		t.Fatalf("expected playing at index 1, got %+v", snap)
	}

	press(m, runeKey('e'))
	if m.mode != modeEdit {
		t.Fatalf("expected edit mode")
	}
	press(m, runeKey('x'))
	snap := m.session.Snapshot()
	if snap.Status != engine.StatusIdle || snap.Index != 0 {
		t.Fatalf("expected idle at index 0 after edit, got %+v", snap)
	}
	if m.session.ActiveTimer().Armed() {
		t.Fatalf("expected no timer after edit")
	}
	if !strings.Contains(m.session.Document(), "x") {
		t.Fatalf("expected edited document, got %q", m.session.Document())
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeRead {
		t.Fatalf("expected read mode after esc")
	}
}

func TestImmersiveEscapeStopsPlayback(t *testing.T) {
	m := newTestModel(t, "alpha beta gamma", nil)
	press(m, runeKey('f'))
	if m.mode != modeImmersive {
		t.Fatalf("expected immersive mode")
	}
	press(m, space())
	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeRead {
		t.Fatalf("expected esc to leave immersive mode")
	}
	if snap := m.session.Snapshot(); snap.Status != engine.StatusIdle {
		t.Fatalf("expected idle after escape, got %+v", snap)
	}
}

func TestFinishedReadingIsStored(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	m := newTestModel(t, "alpha beta", st)
	press(m, space())
	for i := 0; i < engine.CountdownStart; i++ {
		fireActive(t, m)
	}
	fireActive(t, m)
	fireActive(t, m)

	readings, err := st.ListReadings(t.Context(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list readings: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(readings))
	}
	r := readings[0]
	if !r.Completed || r.WordsRead != 2 || r.WordsTotal != 2 || r.Source != "test" || r.WPM != 300 {
		t.Fatalf("unexpected reading %+v", r)
	}
	if !m.hasLast {
		t.Fatalf("expected footer to pick up last reading")
	}
}

func TestRenderAnchoredCentersAnchor(t *testing.T) {
	out := renderAnchored("hello", 20)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := strings.Repeat(" ", 8) + wordStyle.Render("he") + anchorStyle.Render("l") + wordStyle.Render("lo")
	if lines[1] != want {
		t.Fatalf("unexpected word line %q want %q", lines[1], want)
	}
	if lines[0] != strings.Repeat(" ", 10)+guideStyle.Render("│") {
		t.Fatalf("unexpected guide line %q", lines[0])
	}
}

func TestViewShowsToggleLabel(t *testing.T) {
	m := newTestModel(t, "alpha beta", nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if view := m.View(); !strings.Contains(view, "[space] Start") {
		t.Fatalf("expected start label in view")
	}
	press(m, space())
	if view := m.View(); !strings.Contains(view, "[space] Cancel") {
		t.Fatalf("expected cancel label in view")
	}
}
