package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Page is one page of extracted document text. Numbering is zero-based;
// formats without a page concept report everything as page 0.
type Page struct {
	Number int
	Text   string
}

// Parser extracts text from one document format.
type Parser interface {
	// Parse extracts the document's pages in order.
	Parse(r io.Reader, filename string) ([]Page, error)
	// SupportedTypes lists the file extensions this parser handles.
	SupportedTypes() []string
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry with the default parsers registered:
// PDF, Markdown and plain text.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register(&PDFParser{})
	r.Register(&MarkdownParser{})
	r.Register(&PlainTextParser{})
	return r
}

// Register adds a parser for all of its supported extensions.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.SupportedTypes() {
		r.parsers[strings.ToLower(ext)] = p
	}
}

// Supported reports whether the given filename has a registered parser.
func (r *Registry) Supported(filename string) bool {
	_, ok := r.parsers[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// ParseFile opens and parses the document at path. A missing file surfaces
// as an os.IsNotExist-matchable error.
func (r *Registry) ParseFile(path string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := r.parsers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file type %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return pages, nil
}

// PlainTextParser treats the whole file as a single page.
type PlainTextParser struct{}

func (p *PlainTextParser) SupportedTypes() []string {
	return []string{".txt", ".text", ".log"}
}

func (p *PlainTextParser) Parse(r io.Reader, filename string) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, nil
	}
	return []Page{{Number: 0, Text: text}}, nil
}
