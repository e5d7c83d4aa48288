package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledWord struct {
	s     string
	width int
	index int
}

// buildStyledWords styles the word sequence relative to the current word.
func buildStyledWords(words []string, current int) []styledWord {
	out := make([]styledWord, 0, len(words))
	for i, word := range words {
		style := pendingStyle
		switch {
		case i == current:
			style = currentWordStyle
		case i < current:
			style = readStyle
		}
		out = append(out, styledWord{
			s:     style.Render(word),
			width: runewidth.StringWidth(word),
			index: i,
		})
	}
	return out
}

// wrapStyledWords breaks words into lines no wider than width. A word wider
// than width gets a line of its own.
func wrapStyledWords(words []styledWord, width int) [][]styledWord {
	if width <= 0 {
		return [][]styledWord{words}
	}
	var lines [][]styledWord
	line := make([]styledWord, 0)
	lineWidth := 0
	for _, w := range words {
		needed := w.width
		if len(line) > 0 {
			needed++
		}
		if lineWidth+needed > width && len(line) > 0 {
			lines = append(lines, line)
			line = make([]styledWord, 0)
			lineWidth = 0
			needed = w.width
		}
		line = append(line, w)
		lineWidth += needed
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

// lineOfWord returns the line holding the word at index, or 0.
func lineOfWord(lines [][]styledWord, index int) int {
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		if index >= line[0].index && index <= line[len(line)-1].index {
			return i
		}
	}
	return 0
}

// visibleLines picks up to height lines keeping the current line in view,
// a third of the way down when scrolling.
func visibleLines(lines [][]styledWord, current, height int) [][]styledWord {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := current - height/3
	start = max(0, min(start, len(lines)-height))
	return lines[start : start+height]
}

func renderStyledLines(lines [][]styledWord) string {
	var out strings.Builder
	for i, line := range lines {
		if i > 0 {
			out.WriteRune('\n')
		}
		for j, w := range line {
			if j > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(w.s)
		}
	}
	return out.String()
}
