// Package tools implements the retrieval tools exposed to the reasoning
// engine: document search, summary grounding and quiz grounding. Tools do
// not produce prose themselves; they retrieve passages and wrap them in a
// directive for the downstream reasoning step.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"studyassist/internal/docstore"
	"studyassist/internal/llm"
)

// NoResults is returned when retrieval finds nothing. This is a normal
// outcome, not an error.
const NoResults = "No relevant information found in the specified pages."

// Retriever is the slice of the document store the tools need.
type Retriever interface {
	Retrieve(ctx context.Context, docID, query string, k int, pageFilter []int, scoreThreshold float32) ([]docstore.Passage, error)
}

// Tool is one callable retrieval tool.
type Tool struct {
	Def llm.ToolDef
	Run func(ctx context.Context, docID string, args string) (string, error)
}

// Registry holds the closed set of tools, keyed by name.
type Registry struct {
	store Retriever
	tools map[string]*Tool
	order []string
}

// NewRegistry builds the registry with the three retrieval tools.
func NewRegistry(store Retriever) *Registry {
	r := &Registry{store: store, tools: make(map[string]*Tool)}
	r.register(searchTool(store))
	r.register(summaryTool(store))
	r.register(quizTool(store))
	return r
}

func (r *Registry) register(t *Tool) {
	r.tools[t.Def.Name] = t
	r.order = append(r.order, t.Def.Name)
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Defs lists the tool definitions in registration order, for the engine.
func (r *Registry) Defs() []llm.ToolDef {
	defs := make([]llm.ToolDef, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Def)
	}
	return defs
}

// parsePages parses a comma-separated page list ("1,2,3"). An empty input
// yields a nil filter.
func parsePages(pages string) ([]int, error) {
	pages = strings.TrimSpace(pages)
	if pages == "" {
		return nil, nil
	}

	var filter []int
	for _, part := range strings.Split(pages, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", strings.TrimSpace(part))
		}
		filter = append(filter, n)
	}
	return filter, nil
}

// joinContent concatenates passage text in relevance order.
func joinContent(passages []docstore.Passage) string {
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Content
	}
	return strings.Join(parts, "\n\n")
}
