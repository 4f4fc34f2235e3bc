package agent

import (
	"context"
	"sync"

	"studyassist/internal/llm"
)

// CheckpointStore persists conversation history keyed by checkpoint ID.
// A turn loads the prior history before reasoning and saves the full
// updated history after the turn completes. Stores never write partial
// turns.
type CheckpointStore interface {
	// Load returns the stored history for id. ok is false when the
	// checkpoint does not exist yet.
	Load(ctx context.Context, id string) (messages []llm.Message, ok bool, err error)

	// Save replaces the stored history for id. docID records which
	// document the conversation is about.
	Save(ctx context.Context, id, docID string, messages []llm.Message) error
}

// MemoryCheckpoints is an in-process CheckpointStore. Histories vanish on
// restart; useful for tests and single-shot CLI sessions.
type MemoryCheckpoints struct {
	mu       sync.Mutex
	sessions map[string][]llm.Message
}

func NewMemoryCheckpoints() *MemoryCheckpoints {
	return &MemoryCheckpoints{sessions: make(map[string][]llm.Message)}
}

func (m *MemoryCheckpoints) Load(_ context.Context, id string) ([]llm.Message, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[id]
	if !ok {
		return nil, false, nil
	}
	out := make([]llm.Message, len(stored))
	copy(out, stored)
	return out, true, nil
}

func (m *MemoryCheckpoints) Save(_ context.Context, id, _ string, messages []llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]llm.Message, len(messages))
	copy(stored, messages)
	m.sessions[id] = stored
	return nil
}
