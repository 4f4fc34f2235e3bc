// Package stream defines the typed event stream a conversation turn emits:
// an ordered sequence of checkpoint, content, tool_start, error and end
// events, encodable for a line-oriented SSE consumer.
package stream

import (
	"fmt"
	"strings"
)

// Type discriminates stream events.
type Type string

const (
	TypeCheckpoint Type = "checkpoint"
	TypeContent    Type = "content"
	TypeToolStart  Type = "tool_start"
	TypeError      Type = "error"
	TypeEnd        Type = "end"
)

// Event is one entry of a turn's append-only event log.
type Event struct {
	Type         Type   `json:"type"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Content      string `json:"content,omitempty"`
	Action       string `json:"action,omitempty"`
	Message      string `json:"message,omitempty"`
}

// Checkpoint announces a newly assigned conversation identifier. Emitted
// once, only for new conversations, before any other event.
func Checkpoint(id string) Event {
	return Event{Type: TypeCheckpoint, CheckpointID: id}
}

// Content carries one incremental fragment of generated text.
func Content(fragment string) Event {
	return Event{Type: TypeContent, Content: fragment}
}

// ToolStart announces a beginning tool invocation with a human-readable
// action label derived from the tool name.
func ToolStart(toolName string) Event {
	return Event{Type: TypeToolStart, Action: actionFor(toolName)}
}

// Error carries a sanitized mid-stream failure message.
func Error(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// End terminates the stream. Always emitted exactly once, last.
func End() Event {
	return Event{Type: TypeEnd}
}

// actionFor maps a tool name to its user-facing action label.
func actionFor(toolName string) string {
	switch {
	case strings.Contains(toolName, "search"):
		return "Searching document..."
	case strings.Contains(toolName, "summary"):
		return "Generating summary..."
	case strings.Contains(toolName, "quiz"):
		return "Creating quiz questions..."
	default:
		return "Processing..."
	}
}

// escaper keeps event payloads on a single line: backslashes, quotes and
// newlines are escaped so the frame stays parseable by a line-oriented
// consumer.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
)

// SSE renders the event as one server-sent-events frame.
func (e Event) SSE() string {
	switch e.Type {
	case TypeCheckpoint:
		return fmt.Sprintf("data: {\"type\": \"checkpoint\", \"checkpoint_id\": \"%s\"}\n\n", escaper.Replace(e.CheckpointID))
	case TypeContent:
		return fmt.Sprintf("data: {\"type\": \"content\", \"content\": \"%s\"}\n\n", escaper.Replace(e.Content))
	case TypeToolStart:
		return fmt.Sprintf("data: {\"type\": \"tool_start\", \"action\": \"%s\"}\n\n", escaper.Replace(e.Action))
	case TypeError:
		return fmt.Sprintf("data: {\"type\": \"error\", \"message\": \"%s\"}\n\n", escaper.Replace(e.Message))
	default:
		return "data: {\"type\": \"end\"}\n\n"
	}
}

// Sink receives events in emission order.
type Sink func(Event)
