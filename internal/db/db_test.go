package db

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	for _, table := range []string{"documents", "chat_sessions", "chat_messages"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMessagesCascadeOnSessionDelete(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`INSERT INTO chat_sessions (id, doc_id) VALUES ('s1', 'd1')`); err != nil {
		t.Fatal(err)
	}
	if _, err := database.Exec(
		`INSERT INTO chat_messages (session_id, role, content) VALUES ('s1', 'user', 'hi')`); err != nil {
		t.Fatal(err)
	}

	if _, err := database.Exec(`DELETE FROM chat_sessions WHERE id = 's1'`); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM chat_messages`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("orphaned messages = %d, want 0", count)
	}
}

func TestStatusCheckConstraint(t *testing.T) {
	database, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	_, err = database.Exec(`INSERT INTO documents (id, status) VALUES ('d1', 'bogus')`)
	if err == nil {
		t.Fatal("expected CHECK constraint violation for a bogus status")
	}
}
