// Package plain renders a reading as plain text lines, one word per line.
package plain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/model"
	"github.com/verte-zerg/tuirsvp/internal/stats"
	"github.com/verte-zerg/tuirsvp/internal/words"
)

// Recorder persists finished or interrupted readings.
type Recorder interface {
	InsertReading(ctx context.Context, stats model.ReadingStats) (int64, error)
}

// Options configures a plain run.
type Options struct {
	Width    int
	Source   string
	Recorder Recorder
	Logger   *slog.Logger
}

// Run plays text on session and writes each countdown value and word to w.
// It returns when the last word has been shown. Cancelling ctx abandons the
// reading the same way escape does in the interactive reader.
func Run(ctx context.Context, w io.Writer, session *engine.Session, text string, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Width <= 0 {
		opts.Width = stats.TerminalWidth()
	}
	if len(words.Tokenize(text)) == 0 {
		return engine.ErrEmptyInput
	}

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	player := engine.NewPlayer(session, engine.WithPlayerLogger(opts.Logger))
	runErr := make(chan error, 1)
	go func() {
		runErr <- player.Run(runCtx)
	}()

	r := &renderer{
		w:       w,
		width:   opts.Width,
		tracker: stats.NewTracker(opts.Source, nil),
		rec:     opts.Recorder,
		logger:  opts.Logger,
	}
	finished := make(chan error, 1)
	go func() {
		finished <- r.consume(player.Updates())
	}()

	if err := player.SetText(runCtx, text); err != nil {
		return err
	}
	if err := player.Toggle(runCtx); err != nil {
		return err
	}

	var err error
	select {
	case err = <-finished:
	case <-ctx.Done():
		if escErr := player.Escape(runCtx); escErr != nil {
			opts.Logger.Warn("escape failed", "err", escErr)
		}
		stop()
		err = <-finished
		if err == nil {
			err = ctx.Err()
		}
	}
	stop()
	if rerr := <-runErr; rerr != nil && !errors.Is(rerr, context.Canceled) {
		opts.Logger.Warn("player stopped", "err", rerr)
	}
	r.flush()
	return err
}

type renderer struct {
	w       io.Writer
	width   int
	tracker *stats.Tracker
	rec     Recorder
	logger  *slog.Logger

	last string
}

// consume prints snapshots until the session finishes or updates closes.
func (r *renderer) consume(updates <-chan engine.Snapshot) error {
	for snap := range updates {
		r.record(snap)
		if err := r.render(snap); err != nil {
			return err
		}
		if snap.Finished() {
			return nil
		}
	}
	return nil
}

func (r *renderer) render(snap engine.Snapshot) error {
	var line string
	switch {
	case snap.HasCountdown:
		if snap.Countdown <= 0 {
			return nil
		}
		line = AnchorLine(strconv.Itoa(snap.Countdown), r.width)
	case snap.Status == engine.StatusPlaying || snap.Status == engine.StatusFinished:
		line = AnchorLine(snap.Word, r.width)
	default:
		return nil
	}
	// Finished repeats the last word, and rate changes repeat the current one.
	key := strconv.Itoa(snap.Index) + "\x00" + line
	if key == r.last {
		return nil
	}
	r.last = key
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func (r *renderer) record(snap engine.Snapshot) {
	if reading, ok := r.tracker.Observe(snap); ok {
		r.save(reading)
	}
}

func (r *renderer) flush() {
	if reading, ok := r.tracker.Flush(); ok {
		r.save(reading)
	}
}

func (r *renderer) save(reading model.ReadingStats) {
	if r.rec == nil || reading.WordsRead == 0 {
		return
	}
	if _, err := r.rec.InsertReading(context.Background(), reading); err != nil {
		r.logger.Error("failed to save reading", "err", err)
	}
}

// AnchorLine brackets the anchor letter of word and pads the line so the
// anchor lands on column width/2.
func AnchorLine(word string, width int) string {
	prefix, anchor, suffix := words.SplitFocal(word)
	pad := max(0, width/2-runewidth.StringWidth(prefix)-1)
	return strings.Repeat(" ", pad) + prefix + "[" + anchor + "]" + suffix
}
