package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/words"
)

// renderAnchored renders word with its anchor letter at column width/2 and
// guide marks above and below the anchor.
func renderAnchored(word string, width int) string {
	center := width / 2
	if word == "" {
		marker := strings.Repeat(" ", center) + guideStyle.Render("│")
		return marker + "\n\n" + marker
	}
	prefix, anchor, suffix := words.SplitFocal(word)
	pad := max(0, center-runewidth.StringWidth(prefix))
	markerPad := strings.Repeat(" ", pad+runewidth.StringWidth(prefix))
	marker := markerPad + guideStyle.Render("│")
	line := strings.Repeat(" ", pad) +
		wordStyle.Render(prefix) +
		anchorStyle.Render(anchor) +
		wordStyle.Render(suffix)
	return marker + "\n" + line + "\n" + marker
}

// renderStage renders the countdown value or the current word.
func renderStage(snap engine.Snapshot, width int) string {
	if snap.HasCountdown {
		return renderAnchored(strconv.Itoa(snap.Countdown), width)
	}
	return renderAnchored(snap.Word, width)
}
