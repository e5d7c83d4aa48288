// Package words splits text into presentation words and locates their anchor letter.
package words

import "strings"

// Tokenize splits text on whitespace runs and drops empty results.
// Empty or whitespace-only input yields an empty, non-nil slice.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	if fields == nil {
		return []string{}
	}
	return fields
}

// FocalIndex returns the rune index of the anchor letter of a non-empty word.
// It returns 0 for an empty word.
func FocalIndex(word string) int {
	return len([]rune(word)) / 2
}

// SplitFocal splits a word into the text before the anchor letter, the anchor
// letter itself and the text after it.
func SplitFocal(word string) (prefix, anchor, suffix string) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", "", ""
	}
	idx := FocalIndex(word)
	return string(runes[:idx]), string(runes[idx]), string(runes[idx+1:])
}
