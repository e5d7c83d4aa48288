// Package ingest loads reading text from files.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrUnsupported is returned for file types that cannot be read.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrNoText is returned when a file holds no readable words.
	ErrNoText = errors.New("no text found")
)

// StdinPath is the path that selects standard input.
const StdinPath = "-"

// LoadText reads the text of the file at path. Plain-text and Markdown files
// are read as UTF-8, HTML pages are stripped of markup, PDF pages are
// extracted and .docx documents are unpacked.
func LoadText(path string) (string, error) {
	if path == StdinPath {
		return ReadText(os.Stdin)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".txt", ".text", ".md", ".markdown":
		file, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only input.
				_ = cerr
			}
		}()
		return ReadText(file)
	case ".html", ".htm":
		return loadHTML(path)
	case ".docx":
		return loadDocx(path)
	case ".pdf":
		return loadPDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// ReadText reads UTF-8 text from r, dropping a byte order mark and
// normalising line endings.
func ReadText(r io.Reader) (string, error) {
	var b strings.Builder
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		b.WriteString(strings.TrimRight(line, "\r\n"))
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		b.WriteByte('\n')
	}
	return finish(b.String())
}

// finish drops a byte order mark and composes accents so each letter is one
// rune when the anchor letter is picked.
func finish(text string) (string, error) {
	text = norm.NFC.String(strings.TrimPrefix(text, "\ufeff"))
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
