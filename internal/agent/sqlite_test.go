package agent

import (
	"context"
	"testing"

	"studyassist/internal/db"
	"studyassist/internal/llm"
)

func newTestStore(t *testing.T) *SQLiteCheckpoints {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewSQLiteCheckpoints(database)
}

func TestSQLiteCheckpointsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "what is chapter 2 about?"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "search_document", Arguments: `{"query": "chapter 2"}`},
		}},
		{Role: llm.RoleTool, Name: "search_document", ToolCallID: "c1", Content: "[Result 1 - Page 4]\ntext"},
		{Role: llm.RoleAssistant, Content: "Chapter 2 covers thermodynamics."},
	}
	if err := store.Save(ctx, "cp1", "doc1", messages); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok, err := store.Load(ctx, "cp1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("checkpoint not found after save")
	}
	if len(loaded) != len(messages) {
		t.Fatalf("loaded %d messages, want %d", len(loaded), len(messages))
	}
	for i := range messages {
		if loaded[i].Role != messages[i].Role || loaded[i].Content != messages[i].Content {
			t.Errorf("message %d = %+v, want %+v", i, loaded[i], messages[i])
		}
	}
	if len(loaded[1].ToolCalls) != 1 || loaded[1].ToolCalls[0].Name != "search_document" {
		t.Errorf("tool calls not preserved: %+v", loaded[1].ToolCalls)
	}
	if loaded[2].ToolCallID != "c1" || loaded[2].Name != "search_document" {
		t.Errorf("tool message fields not preserved: %+v", loaded[2])
	}
}

func TestSQLiteCheckpointsMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing checkpoint")
	}
}

func TestSQLiteCheckpointsSaveReplacesHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []llm.Message{{Role: llm.RoleUser, Content: "one"}}
	if err := store.Save(ctx, "cp1", "doc1", first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second := append(first,
		llm.Message{Role: llm.RoleAssistant, Content: "answer"},
		llm.Message{Role: llm.RoleUser, Content: "two"},
	)
	if err := store.Save(ctx, "cp1", "doc1", second); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, _, err := store.Load(ctx, "cp1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("loaded %d messages, want 3", len(loaded))
	}
	if loaded[2].Content != "two" {
		t.Errorf("last message = %q", loaded[2].Content)
	}
}
