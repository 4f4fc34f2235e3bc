package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai/jsonschema"

	"studyassist/internal/docstore"
	"studyassist/internal/llm"
)

const (
	summaryK = 10

	// summaryQuery is biased toward topical coverage rather than any one
	// user question.
	summaryQuery = "main topics concepts ideas key points summary"
)

var detailInstructions = map[string]string{
	"brief":    "Create a brief 2-3 sentence summary highlighting only the main points",
	"medium":   "Create a comprehensive paragraph summary (5-7 sentences) covering the key concepts",
	"detailed": "Create a detailed summary with main points organized in bullet form, including important details and examples",
}

type summaryArgs struct {
	Pages       string `json:"pages"`
	DetailLevel string `json:"detail_level"`
}

// summaryTool retrieves broad-coverage passages and wraps them in a
// summarization directive for the reasoning step.
func summaryTool(store Retriever) *Tool {
	return &Tool{
		Def: llm.ToolDef{
			Name:        "generate_summary",
			Description: "Generate a summary of the active document or specific pages. Returns retrieved content with instructions to summarize it.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"pages": {
						Type:        jsonschema.String,
						Description: `Optional comma-separated page numbers (e.g. "1,2,3")`,
					},
					"detail_level": {
						Type:        jsonschema.String,
						Description: "Level of detail for the summary",
						Enum:        []string{"brief", "medium", "detailed"},
					},
				},
			},
		},
		Run: func(ctx context.Context, docID string, rawArgs string) (string, error) {
			var args summaryArgs
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return fmt.Sprintf("Error: invalid summary arguments: %v", err), nil
			}

			pageFilter, err := parsePages(args.Pages)
			if err != nil {
				return fmt.Sprintf("Error: could not parse page list %q: %v", args.Pages, err), nil
			}

			instruction, ok := detailInstructions[args.DetailLevel]
			if !ok {
				instruction = detailInstructions["medium"]
			}

			slog.Info("generating summary grounding", "doc_id", docID,
				"detail_level", args.DetailLevel, "pages", args.Pages)

			results, err := store.Retrieve(ctx, docID, summaryQuery, summaryK, pageFilter, 0)
			if err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Sprintf("Error: %v", err), nil
				}
				return "", err
			}

			if len(results) == 0 {
				return NoResults, nil
			}

			return fmt.Sprintf(`%s based on the following content:

CONTENT TO SUMMARIZE:
%s

Provide a clear, well-structured summary that captures the essential information.`,
				instruction, joinContent(results)), nil
		},
	}
}
