// Package agent runs the conversational loop for a document: it
// alternates between a reasoning step (a streamed model call that may
// request tool invocations) and an acting step (executing those
// invocations against the document store) until the model produces a
// final answer or the cycle cap is reached.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"studyassist/internal/llm"
	"studyassist/internal/stream"
	"studyassist/internal/tools"
)

// maxCycles bounds the number of reason/act round trips in one turn. A
// turn that hits the cap ends with an explicit truncation notice rather
// than looping forever on a model that keeps requesting tools.
const defaultMaxCycles = 10

const truncationNotice = "I've reached the maximum number of reasoning steps for this question. Here's what I found so far; please ask a follow-up if you need more detail."

// Agent orchestrates conversation turns over one document corpus.
type Agent struct {
	provider    llm.Provider
	model       string
	tools       *tools.Registry
	checkpoints CheckpointStore
	maxCycles   int
	log         *slog.Logger
}

// Options configures an Agent. Zero values fall back to defaults.
type Options struct {
	Model     string
	MaxCycles int
}

func New(provider llm.Provider, registry *tools.Registry, checkpoints CheckpointStore, opts Options) *Agent {
	maxCycles := opts.MaxCycles
	if maxCycles <= 0 {
		maxCycles = defaultMaxCycles
	}
	return &Agent{
		provider:    provider,
		model:       opts.Model,
		tools:       registry,
		checkpoints: checkpoints,
		maxCycles:   maxCycles,
		log:         slog.Default().With("component", "agent"),
	}
}

// NewCheckpointID mints an identifier for a fresh conversation.
func NewCheckpointID() string {
	return uuid.NewString()
}

// Converse runs one conversation turn: load history for checkpointID,
// append the user message, cycle through reasoning and tool execution,
// then persist the grown history. Events are pushed to emit in order;
// the caller owns the surrounding checkpoint and end events.
//
// The returned error covers infrastructure failures (checkpoint store,
// cancellation). Model-call failures do not fail the turn: they become
// a terminal assistant message so the conversation stays usable.
func (a *Agent) Converse(ctx context.Context, checkpointID, docID, userMessage string, emit stream.Sink) error {
	history, _, err := a.checkpoints.Load(ctx, checkpointID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: userMessage})

	messages := func() []llm.Message {
		out := make([]llm.Message, 0, len(history)+1)
		out = append(out, llm.Message{Role: llm.RoleSystem, Content: a.systemPrompt(docID)})
		return append(out, history...)
	}

	for cycle := 0; ; cycle++ {
		if cycle >= a.maxCycles {
			a.log.Warn("cycle cap reached, truncating turn",
				"checkpoint_id", checkpointID, "doc_id", docID, "cycles", cycle)
			emit(stream.Content(truncationNotice))
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: truncationNotice})
			break
		}

		resp, err := a.provider.ChatStream(ctx, llm.ChatRequest{
			Model:    a.model,
			Messages: messages(),
			Tools:    a.tools.Defs(),
		}, func(delta string) {
			emit(stream.Content(delta))
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.log.Error("model call failed", "checkpoint_id", checkpointID, "error", err)
			apology := "I apologize, but I encountered an error while processing your question. Please try again."
			emit(stream.Content(apology))
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: apology})
			break
		}

		if len(resp.ToolCalls) == 0 {
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
			break
		}

		history = append(history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			emit(stream.ToolStart(call.Name))
			history = append(history, a.execute(ctx, docID, call))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}

	if err := a.checkpoints.Save(ctx, checkpointID, docID, history); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// execute dispatches one tool call and wraps the outcome as a tool
// message. Unknown tools and execution failures become inline results
// the model can recover from on the next reasoning step.
func (a *Agent) execute(ctx context.Context, docID string, call llm.ToolCall) llm.Message {
	callID := call.ID
	if callID == "" {
		callID = uuid.NewString()
	}
	msg := llm.Message{Role: llm.RoleTool, Name: call.Name, ToolCallID: callID}

	tool, ok := a.tools.Get(call.Name)
	if !ok {
		a.log.Warn("model requested unknown tool", "tool", call.Name, "doc_id", docID)
		msg.Content = fmt.Sprintf("Unknown tool: %s", call.Name)
		return msg
	}

	result, err := tool.Run(ctx, docID, call.Arguments)
	if err != nil {
		a.log.Error("tool execution failed", "tool", call.Name, "doc_id", docID, "error", err)
		msg.Content = fmt.Sprintf("Error executing %s: %v", call.Name, err)
		return msg
	}
	msg.Content = result
	return msg
}

func (a *Agent) systemPrompt(docID string) string {
	return fmt.Sprintf(`You are a helpful study assistant answering questions about a document (ID: %s).

You have access to these tools:
- search_document: search the document for passages relevant to a query, optionally restricted to specific pages
- generate_summary: retrieve broad content from the document and produce a summary at a requested level of detail
- generate_quiz: retrieve key content and produce quiz questions at a requested difficulty

Use the tools to ground every answer in the actual document content. When a tool returns no relevant information, say so honestly instead of inventing an answer. Keep answers clear and focused on what the document says.`, docID)
}
