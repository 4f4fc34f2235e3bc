package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlainTextSinglePage(t *testing.T) {
	p := &PlainTextParser{}
	pages, err := p.Parse(strings.NewReader("  some notes\nmore notes  \n"), "notes.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if pages[0].Number != 0 {
		t.Errorf("page number = %d, want 0", pages[0].Number)
	}
	if pages[0].Text != "some notes\nmore notes" {
		t.Errorf("text = %q", pages[0].Text)
	}
}

func TestPlainTextEmptyFile(t *testing.T) {
	p := &PlainTextParser{}
	pages, err := p.Parse(strings.NewReader("   \n  "), "empty.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if pages != nil {
		t.Fatalf("pages = %v, want nil for whitespace-only input", pages)
	}
}

func TestMarkdownStripsFormatting(t *testing.T) {
	src := `# Heading

Some **bold** and *italic* text with a [link](https://example.com).

- item one
- item two
`
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(src), "doc.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}

	text := pages[0].Text
	for _, want := range []string{"Heading", "bold", "italic", "link", "item one", "item two"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	for _, marker := range []string{"#", "**", "https://example.com", "- item"} {
		if strings.Contains(text, marker) {
			t.Errorf("formatting marker %q leaked into %q", marker, text)
		}
	}
}

func TestMarkdownKeepsCodeBlocks(t *testing.T) {
	src := "Intro paragraph.\n\n```go\nfunc main() {}\n```\n"
	p := &MarkdownParser{}
	pages, err := p.Parse(strings.NewReader(src), "code.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pages) != 1 || !strings.Contains(pages[0].Text, "func main() {}") {
		t.Fatalf("code block content missing: %v", pages)
	}
}

func TestRegistrySupported(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		filename string
		want     bool
	}{
		{"doc.pdf", true},
		{"doc.PDF", true},
		{"notes.md", true},
		{"notes.txt", true},
		{"image.png", false},
		{"archive.zip", false},
	}
	for _, tt := range tests {
		if got := r.Supported(tt.filename); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	r := NewRegistry()
	_, err := r.ParseFile(filepath.Join(t.TempDir(), "absent.txt"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want an os.IsNotExist error", err)
	}
}

func TestParseFileUnsupportedType(t *testing.T) {
	r := NewRegistry()
	path := filepath.Join(t.TempDir(), "doc.xyz")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ParseFile(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
