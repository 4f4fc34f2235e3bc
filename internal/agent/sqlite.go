package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"studyassist/internal/db"
	"studyassist/internal/llm"
)

// SQLiteCheckpoints stores conversation history in the chat_sessions and
// chat_messages tables. Each Save rewrites the session's messages in one
// transaction so a crash mid-save never leaves a partial turn behind.
type SQLiteCheckpoints struct {
	db *db.DB
}

func NewSQLiteCheckpoints(database *db.DB) *SQLiteCheckpoints {
	return &SQLiteCheckpoints{db: database}
}

func (s *SQLiteCheckpoints) Load(ctx context.Context, id string) ([]llm.Message, bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chat_sessions WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, name, tool_call_id, tool_calls
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY id ASC`, id)
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	defer rows.Close()

	var messages []llm.Message
	for rows.Next() {
		var (
			msg       llm.Message
			toolCalls string
		)
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Name, &msg.ToolCallID, &toolCalls); err != nil {
			return nil, false, fmt.Errorf("scan checkpoint message: %w", err)
		}
		if toolCalls != "" && toolCalls != "[]" {
			if err := json.Unmarshal([]byte(toolCalls), &msg.ToolCalls); err != nil {
				return nil, false, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load checkpoint %s: %w", id, err)
	}
	return messages, true, nil
}

func (s *SQLiteCheckpoints) Save(ctx context.Context, id, docID string, messages []llm.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, doc_id) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET doc_id = excluded.doc_id, updated_at = CURRENT_TIMESTAMP`,
		id, docID); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}

	for _, msg := range messages {
		toolCalls := "[]"
		if len(msg.ToolCalls) > 0 {
			encoded, err := json.Marshal(msg.ToolCalls)
			if err != nil {
				return fmt.Errorf("encode tool calls: %w", err)
			}
			toolCalls = string(encoded)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (session_id, role, content, name, tool_call_id, tool_calls)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, string(msg.Role), msg.Content, msg.Name, msg.ToolCallID, toolCalls); err != nil {
			return fmt.Errorf("save checkpoint %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", id, err)
	}
	return nil
}
