package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const maxAttempts = 3

// OpenAIProvider talks to any OpenAI-compatible chat completions API
// (OpenAI, Azure, DeepSeek, Ollama's compatibility endpoint, ...).
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates the provider. baseURL may be empty for the
// default OpenAI endpoint.
func NewOpenAIProvider(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

// ChatStream runs one streaming completion. Text deltas are forwarded to
// onDelta; tool-call fragments are accumulated across chunks (the API
// delivers argument JSON in pieces) and returned on the final response.
// Transient failures before the first received chunk are retried with
// backoff; once streaming has begun, errors are returned as-is.
func (p *OpenAIProvider) ChatStream(ctx context.Context, req ChatRequest, onDelta StreamHandler) (*ChatResponse, error) {
	apiReq := p.buildRequest(req)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, received, err := p.streamOnce(ctx, apiReq, onDelta)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if received || !isTransient(err) || ctx.Err() != nil {
			return nil, err
		}

		slog.Warn("transient engine failure, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// streamOnce performs a single streaming attempt. received reports whether
// any chunk arrived before the failure.
func (p *OpenAIProvider) streamOnce(ctx context.Context, apiReq openai.ChatCompletionRequest, onDelta StreamHandler) (*ChatResponse, bool, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, apiReq)
	if err != nil {
		return nil, false, err
	}
	defer stream.Close()

	var (
		content      strings.Builder
		accumulators []toolCallAccumulator
		finishReason string
		received     bool
	)

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, received, err
		}
		received = true

		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]
		if choice.FinishReason != "" {
			finishReason = string(choice.FinishReason)
		}

		// Tool-call deltas: arguments for one call may span many chunks,
		// keyed by the call's index.
		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			for len(accumulators) <= idx {
				accumulators = append(accumulators, toolCallAccumulator{})
			}
			if tc.ID != "" {
				accumulators[idx].id = tc.ID
			}
			if tc.Function.Name != "" {
				accumulators[idx].name = tc.Function.Name
			}
			accumulators[idx].args.WriteString(tc.Function.Arguments)
		}

		if choice.Delta.Content != "" {
			content.WriteString(choice.Delta.Content)
			if onDelta != nil {
				onDelta(choice.Delta.Content)
			}
		}
	}

	out := &ChatResponse{
		Content:      content.String(),
		FinishReason: finishReason,
	}
	for _, acc := range accumulators {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        acc.id,
			Name:      acc.name,
			Arguments: acc.args.String(),
		})
	}
	return out, received, nil
}

type toolCallAccumulator struct {
	id   string
	name string
	args strings.Builder
}

func (p *OpenAIProvider) buildRequest(req ChatRequest) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		messages[i] = msg
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	for _, t := range req.Tools {
		def := openai.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
		apiReq.Tools = append(apiReq.Tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: &def,
		})
	}

	return apiReq
}

// isTransient reports whether err is worth retrying: rate limits, server
// errors and network timeouts.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
