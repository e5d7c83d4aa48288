// Package stats contains reading statistics and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuirsvp/internal/model"
)

const sparkChars = " .:-=+*#%@"

// ReadingMetrics computes the effective words per minute and the share of the
// text that was read.
func ReadingMetrics(wordsRead, wordsTotal int, durationMs int64) (wpm, completion float64) {
	if wordsTotal > 0 {
		completion = float64(wordsRead) / float64(wordsTotal)
	}
	if durationMs <= 0 {
		return 0, completion
	}
	minutes := float64(durationMs) / 60000.0
	wpm = float64(wordsRead) / minutes
	return wpm, completion
}

// Summary aggregates a list of readings.
type Summary struct {
	Readings  int
	Completed int
	WordsRead int
	Duration  time.Duration
	AvgWPM    float64
	BestWPM   float64
}

// Summarize aggregates readings.
func Summarize(readings []model.ReadingAggregate) Summary {
	var s Summary
	var durationMs int64
	for _, r := range readings {
		s.Readings++
		if r.Completed {
			s.Completed++
		}
		s.WordsRead += r.WordsRead
		durationMs += r.DurationMs
		wpm, _ := ReadingMetrics(r.WordsRead, r.WordsTotal, r.DurationMs)
		if wpm > s.BestWPM {
			s.BestWPM = wpm
		}
	}
	s.Duration = time.Duration(durationMs) * time.Millisecond
	s.AvgWPM, _ = ReadingMetrics(s.WordsRead, 0, durationMs)
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders the last width values as a single-line ASCII sparkline.
// A non-positive width renders every value.
func Sparkline(values []float64, width int) string {
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// WPMTrend returns the moving average of effective WPM per reading.
func WPMTrend(readings []model.ReadingAggregate, window int) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i], _ = ReadingMetrics(r.WordsRead, r.WordsTotal, r.DurationMs)
	}
	return MovingAverage(values, window)
}

// RenderSummary prints a summary for readings.
func RenderSummary(w io.Writer, summary Summary) error {
	if summary.Readings == 0 {
		_, err := fmt.Fprintln(w, "No readings found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Readings: %d (%d finished)", summary.Readings, summary.Completed),
		fmt.Sprintf("Words read: %d", summary.WordsRead),
		fmt.Sprintf("Time reading: %s", summary.Duration.Round(time.Second)),
		fmt.Sprintf("Avg WPM: %.1f", summary.AvgWPM),
		fmt.Sprintf("Best WPM: %.1f", summary.BestWPM),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints the effective WPM sparkline sized to width.
func RenderTrend(w io.Writer, readings []model.ReadingAggregate, window, width int) error {
	if len(readings) == 0 {
		return nil
	}
	const label = "WPM trend "
	line := Sparkline(WPMTrend(readings, window), width-len(label))
	_, err := fmt.Fprintf(w, "%s%s\n\n", label, line)
	return err
}

// RenderReadingTable prints one row per reading, newest first.
func RenderReadingTable(w io.Writer, readings []model.ReadingAggregate) error {
	if len(readings) == 0 {
		return nil
	}
	headers, rows := ReadingRows(readings)
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ReadingRows formats readings as table cells, newest first.
func ReadingRows(readings []model.ReadingAggregate) ([]string, [][]string) {
	headers := []string{"Ended", "Source", "Words", "Done", "Rate", "Eff. WPM"}
	rows := make([][]string, 0, len(readings))
	for i := len(readings) - 1; i >= 0; i-- {
		r := readings[i]
		wpm, completion := ReadingMetrics(r.WordsRead, r.WordsTotal, r.DurationMs)
		done := fmt.Sprintf("%.0f%%", completion*100)
		if r.Completed {
			done = "yes"
		}
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			fmt.Sprintf("%d/%d", r.WordsRead, r.WordsTotal),
			done,
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%.1f", wpm),
		})
	}
	return headers, rows
}
