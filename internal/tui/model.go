// Package tui provides the Bubble Tea reading interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/model"
	statsPkg "github.com/verte-zerg/tuirsvp/internal/stats"
	"github.com/verte-zerg/tuirsvp/internal/store"
)

type mode int

const (
	modeRead mode = iota
	modeEdit
	modeImmersive
)

// tickMsg is delivered when an armed engine timer elapses.
type tickMsg struct {
	id engine.TimerID
}

// Model implements the Bubble Tea reading UI.
type Model struct {
	config  model.Config
	rates   []int
	session *engine.Session
	store   *store.Store
	tracker *statsPkg.Tracker
	logger  *slog.Logger

	mode   mode
	editor textarea.Model
	keys   keyMap
	help   help.Model

	width  int
	height int

	lastWPM     float64
	lastDone    float64
	hasLast     bool
	allWordsRd  int
	allDuration time.Duration
}

var (
	wordStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	anchorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	guideStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	readStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a reading TUI model for text. st may be nil, in which
// case readings are not recorded.
func NewModel(cfg model.Config, text string, st *store.Store, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	session, err := engine.NewSession(cfg.WPM,
		engine.WithCountdownStep(cfg.CountdownStep),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	rates := slices.Clone(cfg.Rates)
	slices.Sort(rates)
	rates = slices.Compact(rates)

	editor := textarea.New()
	editor.Placeholder = "Paste your article here..."
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.ShowLineNumbers = false
	editor.SetValue(text)

	m := &Model{
		config:  cfg,
		rates:   rates,
		session: session,
		store:   st,
		tracker: statsPkg.NewTracker(cfg.Source, nil),
		logger:  logger,
		editor:  editor,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	if cfg.Immersive {
		m.mode = modeImmersive
	}
	session.Observe(m.observe)
	session.SetText(text)
	m.loadFooterStats()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeEditor()
		return m, nil
	case tickMsg:
		return m, m.arm(m.session.Fire(msg.id))
	case tea.KeyMsg:
		if m.mode == modeEdit {
			return m.updateEditor(msg)
		}
		return m.handleKey(msg)
	default:
		if m.mode == modeEdit {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.flush()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		return m, m.arm(m.session.Toggle())
	case key.Matches(msg, m.keys.Escape):
		if m.mode == modeImmersive {
			m.mode = modeRead
		}
		return m, m.arm(m.session.Escape())
	case key.Matches(msg, m.keys.Faster):
		return m, m.stepRate(1)
	case key.Matches(msg, m.keys.Slower):
		return m, m.stepRate(-1)
	case key.Matches(msg, m.keys.Immersive):
		if m.mode == modeImmersive {
			m.mode = modeRead
		} else {
			m.mode = modeImmersive
		}
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		if m.mode == modeImmersive {
			return m, nil
		}
		m.mode = modeEdit
		m.resizeEditor()
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editor.Blur()
		m.mode = modeRead
		return m, nil
	case tea.KeyCtrlC:
		m.flush()
		return m, tea.Quit
	}
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.tracker.SetSource("edited")
		m.session.SetText(after)
	}
	return m, cmd
}

// stepRate moves to the next configured rate in direction dir.
func (m *Model) stepRate(dir int) tea.Cmd {
	next, ok := nextRate(m.rates, m.session.Rate(), dir)
	if !ok {
		return nil
	}
	t, err := m.session.SetRate(next)
	if err != nil {
		m.logger.Warn("rate rejected", "wpm", next, "err", err)
		return nil
	}
	return m.arm(t)
}

// nextRate returns the closest rate in rates above (dir > 0) or below
// (dir < 0) current. rates must be sorted.
func nextRate(rates []int, current, dir int) (int, bool) {
	if dir > 0 {
		for _, r := range rates {
			if r > current {
				return r, true
			}
		}
		return 0, false
	}
	for i := len(rates) - 1; i >= 0; i-- {
		if rates[i] < current {
			return rates[i], true
		}
	}
	return 0, false
}

// arm schedules delivery of t as a tickMsg.
func (m *Model) arm(t engine.Timer) tea.Cmd {
	if !t.Armed() {
		return nil
	}
	id := t.ID
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}

func (m *Model) observe(snap engine.Snapshot) {
	if stats, ok := m.tracker.Observe(snap); ok {
		m.saveReading(stats)
	}
}

func (m *Model) flush() {
	if stats, ok := m.tracker.Flush(); ok {
		m.saveReading(stats)
	}
}

func (m *Model) saveReading(stats model.ReadingStats) {
	if stats.WordsRead == 0 {
		return
	}
	wpm, done := statsPkg.ReadingMetrics(stats.WordsRead, stats.WordsTotal, stats.DurationMs)
	m.lastWPM = wpm
	m.lastDone = done
	m.hasLast = true
	m.allWordsRd += stats.WordsRead
	m.allDuration += time.Duration(stats.DurationMs) * time.Millisecond
	if m.store == nil {
		return
	}
	if _, err := m.store.InsertReading(context.Background(), stats); err != nil {
		m.logger.Error("failed to save reading", "err", err)
	}
}

func (m *Model) loadFooterStats() {
	if m.store == nil {
		return
	}
	readings, err := m.store.ListReadings(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Error("failed to load reading stats", "err", err)
		return
	}
	if len(readings) == 0 {
		return
	}
	last := readings[len(readings)-1]
	m.lastWPM, m.lastDone = statsPkg.ReadingMetrics(last.WordsRead, last.WordsTotal, last.DurationMs)
	m.hasLast = true
	summary := statsPkg.Summarize(readings)
	m.allWordsRd = summary.WordsRead
	m.allDuration = summary.Duration
}

func (m *Model) resizeEditor() {
	if m.width == 0 || m.height == 0 {
		return
	}
	m.editor.SetWidth(m.contentWidth())
	m.editor.SetHeight(max(3, m.height-6))
}

func (m *Model) contentWidth() int {
	return max(1, int(float64(m.width)*0.70))
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.session.Snapshot()
	if m.width == 0 || m.height == 0 {
		return renderStage(snap, 40)
	}
	if m.mode == modeImmersive {
		return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Center, renderStage(snap, m.width))
	}

	stage := renderStage(snap, m.width)
	status := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderStatus(snap))
	footer := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter(snap))
	helpView := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))

	fixed := lipgloss.Height(stage) + lipgloss.Height(helpView) + 4
	bodyHeight := max(1, m.height-fixed)
	var body string
	if m.mode == modeEdit {
		body = m.editor.View()
	} else {
		body = m.renderText(snap, bodyHeight)
	}
	body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top,
		lipgloss.NewStyle().Width(m.contentWidth()).Render(body))

	return strings.Join([]string{stage, status, "", body, footer, helpView}, "\n")
}

func (m *Model) renderText(snap engine.Snapshot, height int) string {
	if snap.Total == 0 {
		return pendingStyle.Render("No text loaded. Press e to paste some.")
	}
	current := snap.Index
	if snap.Status == engine.StatusIdle {
		current = -1
	}
	styled := buildStyledWords(m.session.Words(), current)
	lines := wrapStyledWords(styled, m.contentWidth())
	lines = visibleLines(lines, lineOfWord(lines, snap.Index), height)
	return renderStyledLines(lines)
}

func (m *Model) renderStatus(snap engine.Snapshot) string {
	segments := []string{
		statusStyle.Render(snap.Status.String()),
		fmt.Sprintf("%d WPM", snap.Rate),
	}
	if snap.Total > 0 {
		segments = append(segments, fmt.Sprintf("%d/%d", snap.Index+1, snap.Total))
	}
	segments = append(segments, "[space] "+snap.ToggleLabel())
	if m.mode == modeEdit {
		segments = append(segments, "[esc] done editing")
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderFooter(snap engine.Snapshot) string {
	progress := 0
	if snap.Total > 0 && snap.Status != engine.StatusIdle {
		progress = int(float64(snap.Index+1) / float64(snap.Total) * 100)
	}
	segments := []string{fmt.Sprintf("Progress %d%%", progress)}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastDone*100))
	}
	if m.allWordsRd > 0 {
		segments = append(segments, fmt.Sprintf("All-time %d words · %s", m.allWordsRd, m.allDuration.Round(time.Second)))
	}
	if len(segments) == 1 && snap.Total == 0 {
		return errorStyle.Render("nothing to read")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
