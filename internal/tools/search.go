package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"studyassist/internal/docstore"
	"studyassist/internal/llm"
)

const searchK = 8

type searchArgs struct {
	Query string `json:"query"`
	Pages string `json:"pages"`
}

// searchTool is a direct semantic search for answering questions.
func searchTool(store Retriever) *Tool {
	return &Tool{
		Def: llm.ToolDef{
			Name:        "search_document",
			Description: "Search within the active document using semantic similarity. Use this to find specific information and answer questions. Returns matching passages with their page numbers.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"query": {
						Type:        jsonschema.String,
						Description: "The search query or question",
					},
					"pages": {
						Type:        jsonschema.String,
						Description: `Optional comma-separated page numbers to filter (e.g. "1,2,3")`,
					},
				},
				Required: []string{"query"},
			},
		},
		Run: func(ctx context.Context, docID string, rawArgs string) (string, error) {
			var args searchArgs
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return fmt.Sprintf("Error: invalid search arguments: %v", err), nil
			}

			pageFilter, err := parsePages(args.Pages)
			if err != nil {
				return fmt.Sprintf("Error: could not parse page list %q: %v", args.Pages, err), nil
			}
			if pageFilter != nil {
				slog.Info("searching with page filter", "doc_id", docID, "pages", pageFilter)
			}

			results, err := store.Retrieve(ctx, docID, args.Query, searchK, pageFilter, 0)
			if err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Sprintf("Error: %v", err), nil
				}
				return "", err
			}

			if len(results) == 0 {
				return NoResults, nil
			}

			var sb strings.Builder
			for i, r := range results {
				fmt.Fprintf(&sb, "[Result %d - Page %d]\n%s\n", i+1, r.Page, r.Content)
				if i < len(results)-1 {
					sb.WriteString("\n")
				}
			}

			slog.Info("search tool found results", "doc_id", docID, "count", len(results))
			return sb.String(), nil
		},
	}
}
