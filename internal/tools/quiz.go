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
	quizK = 12

	// quizQuery is biased toward factual density.
	quizQuery = "important concepts definitions facts key information"

	minQuestions     = 1
	maxQuestions     = 10
	defaultQuestions = 5
)

var difficultyDescriptions = map[string]string{
	"easy":   "simple recall questions with straightforward answers",
	"medium": "questions requiring understanding and application of concepts",
	"hard":   "complex questions requiring deep comprehension, analysis, and critical thinking",
}

type quizArgs struct {
	Pages string `json:"pages"`
	// Pointer so an omitted count is distinguishable from an explicit 0.
	NumQuestions *int   `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
}

// quizTool retrieves fact-dense passages and wraps them in a strict
// quiz-formatting directive for the reasoning step.
func quizTool(store Retriever) *Tool {
	return &Tool{
		Def: llm.ToolDef{
			Name:        "generate_quiz",
			Description: "Generate multiple-choice quiz questions from the active document or specific pages. Returns retrieved content with instructions to create the quiz.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"pages": {
						Type:        jsonschema.String,
						Description: `Optional comma-separated page numbers (e.g. "1,2,3")`,
					},
					"num_questions": {
						Type:        jsonschema.Integer,
						Description: "Number of questions to generate (1-10)",
					},
					"difficulty": {
						Type:        jsonschema.String,
						Description: "Difficulty level of the questions",
						Enum:        []string{"easy", "medium", "hard"},
					},
				},
			},
		},
		Run: func(ctx context.Context, docID string, rawArgs string) (string, error) {
			var args quizArgs
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return fmt.Sprintf("Error: invalid quiz arguments: %v", err), nil
			}

			pageFilter, err := parsePages(args.Pages)
			if err != nil {
				return fmt.Sprintf("Error: could not parse page list %q: %v", args.Pages, err), nil
			}

			num := defaultQuestions
			if args.NumQuestions != nil {
				num = clamp(*args.NumQuestions, minQuestions, maxQuestions)
			}

			diffDesc, ok := difficultyDescriptions[args.Difficulty]
			difficulty := args.Difficulty
			if !ok {
				difficulty = "medium"
				diffDesc = difficultyDescriptions["medium"]
			}

			slog.Info("generating quiz grounding", "doc_id", docID,
				"num_questions", num, "difficulty", difficulty, "pages", args.Pages)

			results, err := store.Retrieve(ctx, docID, quizQuery, quizK, pageFilter, 0)
			if err != nil {
				if errors.Is(err, docstore.ErrNotFound) {
					return fmt.Sprintf("Error: %v", err), nil
				}
				return "", err
			}

			if len(results) == 0 {
				return NoResults, nil
			}

			return fmt.Sprintf(`Generate exactly %d multiple-choice quiz questions at %s difficulty level (%s) based on the following content:

CONTENT FOR QUIZ:
%s

IMPORTANT INSTRUCTIONS:
1. Create %d questions that test understanding of the material
2. Each question must have 4 options (A, B, C, D)
3. Include the correct answer and a brief explanation
4. Make sure questions are clear, unambiguous, and appropriately difficult

FORMAT EACH QUESTION EXACTLY AS FOLLOWS:

Question 1: [Clear, specific question about the content]
A) [First option]
B) [Second option]
C) [Third option]
D) [Fourth option]
Correct Answer: [Letter of correct answer]
Explanation: [Brief explanation of why this is correct and why others are wrong]

[Repeat for all %d questions]

Ensure questions test different aspects of the material and are at the %s difficulty level.`,
				num, difficulty, diffDesc, joinContent(results), num, num, difficulty), nil
		},
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
