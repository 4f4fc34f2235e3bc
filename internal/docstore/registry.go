package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studyassist/internal/db"
)

// Document statuses in the registry.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
	StatusError   = "error"
)

// DocumentRecord is one row of the document registry. It replaces the
// sidecar metadata file: filename, page/chunk counts and processing status
// live here, keyed by doc ID.
type DocumentRecord struct {
	ID         string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	SourcePath string    `json:"-"`
	TotalPages int       `json:"total_pages"`
	ChunkCount int       `json:"chunks"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Registry persists document metadata in SQLite.
type Registry struct {
	db *db.DB
}

// NewRegistry creates a registry backed by the given database.
func NewRegistry(database *db.DB) *Registry {
	return &Registry{db: database}
}

// Upsert inserts or replaces the record for rec.ID.
func (r *Registry) Upsert(ctx context.Context, rec DocumentRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, source_path, total_pages, chunk_count, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			source_path = excluded.source_path,
			total_pages = excluded.total_pages,
			chunk_count = excluded.chunk_count,
			status = excluded.status,
			updated_at = datetime('now')`,
		rec.ID, rec.Filename, rec.SourcePath, rec.TotalPages, rec.ChunkCount, rec.Status)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", rec.ID, err)
	}
	return nil
}

// SetStatus updates only the processing status of a document.
func (r *Registry) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id)
	if err != nil {
		return fmt.Errorf("set status for %s: %w", id, err)
	}
	return nil
}

// SetFilename replaces the display filename for id, keeping the user's
// original name for uploads stored on disk under a generated one.
func (r *Registry) SetFilename(ctx context.Context, id, filename string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE documents SET filename = ?, updated_at = datetime('now') WHERE id = ?`,
		filename, id)
	if err != nil {
		return fmt.Errorf("set filename for %s: %w", id, err)
	}
	return nil
}

// Get returns the record for id, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, source_path, total_pages, chunk_count, status, created_at
		FROM documents WHERE id = ?`, id)

	var rec DocumentRecord
	err := row.Scan(&rec.ID, &rec.Filename, &rec.SourcePath, &rec.TotalPages,
		&rec.ChunkCount, &rec.Status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &rec, nil
}

// List returns all registered documents, newest first.
func (r *Registry) List(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, source_path, total_pages, chunk_count, status, created_at
		FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.SourcePath, &rec.TotalPages,
			&rec.ChunkCount, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes the record for id. Deleting an absent record is a no-op.
func (r *Registry) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
