package parser

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts per-page text from PDF files.
type PDFParser struct{}

func (p *PDFParser) SupportedTypes() []string {
	return []string{".pdf"}
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]Page, error) {
	// The pdf library needs io.ReaderAt plus size, so buffer first.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf data: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]Page, 0, total)

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("failed to extract page text", "file", filename, "page", i, "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text == "" {
			continue
		}
		pages = append(pages, Page{Number: i - 1, Text: text})
	}

	return pages, nil
}
