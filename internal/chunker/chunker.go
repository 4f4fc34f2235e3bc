package chunker

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"studyassist/internal/parser"
)

// Chunk is a bounded span of document text with page provenance, the atomic
// unit stored in the vector index.
type Chunk struct {
	Text string
	Page int
	Seq  int
}

// Chunker splits parsed pages into overlapping passages.
type Chunker struct {
	chunkSize int // max characters per chunk
	overlap   int // characters carried over between adjacent chunks
}

// New creates a chunker. Invalid sizes fall back to the defaults
// (1500 chars with 200 overlap).
func New(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 200
	}
	// The default overlap may still exceed a small chunkSize.
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Chunk splits the pages into passages. Pages are processed in order and
// chunks never span page boundaries, so every chunk has a single page of
// provenance. Seq numbers the chunks across the whole document.
func (c *Chunker) Chunk(pages []parser.Page) []Chunk {
	var chunks []Chunk
	seq := 0

	for _, page := range pages {
		pageNum := page.Number
		if pageNum < 0 {
			slog.Warn("missing page number for chunked text, defaulting to 0")
			pageNum = 0
		}

		for _, text := range c.split(page.Text) {
			chunks = append(chunks, Chunk{Text: text, Page: pageNum, Seq: seq})
			seq++
		}
	}

	return chunks
}

// split merges the text's paragraphs into chunks no longer than chunkSize,
// carrying overlap characters from the tail of each chunk into the next.
func (c *Chunker) split(text string) []string {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder

	for _, para := range paragraphs {
		paraLen := utf8.RuneCountInString(para)

		// A paragraph larger than chunkSize needs a hard split.
		if paraLen > c.chunkSize {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			runes := []rune(para)
			for i := 0; i < len(runes); i += c.chunkSize - c.overlap {
				end := i + c.chunkSize
				if end > len(runes) {
					end = len(runes)
				}
				chunks = append(chunks, string(runes[i:end]))
				if end >= len(runes) {
					break
				}
			}
			continue
		}

		currentLen := utf8.RuneCountInString(current.String())
		if currentLen+paraLen+1 > c.chunkSize {
			chunks = append(chunks, current.String())
			prev := current.String()
			current.Reset()
			if c.overlap > 0 {
				prevRunes := []rune(prev)
				if len(prevRunes) > c.overlap {
					current.WriteString(string(prevRunes[len(prevRunes)-c.overlap:]))
					current.WriteString("\n")
				}
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(para)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func splitParagraphs(text string) []string {
	var parts []string
	for _, p := range strings.Split(text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
