package ingest

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// loadPDF extracts the text of every page in order, pages joined by a space.
func loadPDF(path string) (text string, err error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	// The reader panics on malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	fonts := make(map[string]*pdf.Font)
	count := reader.NumPage()
	pages := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}
	return finish(strings.Join(pages, " "))
}
