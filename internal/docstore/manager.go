package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"studyassist/internal/chunker"
	"studyassist/internal/embeddings"
	"studyassist/internal/parser"
	"studyassist/internal/vectordb"
)

// IngestResult reports the outcome of processing one document.
type IngestResult struct {
	DocID      string `json:"doc_id"`
	Status     string `json:"status"` // "created", "loaded" or "error"
	Filename   string `json:"filename,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
	Chunks     int    `json:"chunks,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Passage is one retrieved span of document text.
type Passage struct {
	Content string  `json:"content"`
	Page    int     `json:"page"`
	Source  string  `json:"source"`
	Score   float32 `json:"score"`
}

// Options configures a Manager.
type Options struct {
	DataDir      string
	CacheSize    int // max open index handles, default 10
	ChunkSize    int
	ChunkOverlap int
}

// Manager owns the per-document persistent vector indexes on disk and a
// bounded LRU cache of open handles in memory. It is safe for concurrent
// use: cache mutation is serialized by mu, while queries against a resolved
// handle run outside the critical section.
type Manager struct {
	uploadsDir string
	indexDir   string

	parsers  *parser.Registry
	chunker  *chunker.Chunker
	embedder embeddings.Embedder
	embedFn  chromem.EmbeddingFunc
	registry *Registry
	log      *slog.Logger

	mu    sync.Mutex
	cache *handleCache
}

// NewManager creates the store manager, creating the uploads/ and indexes/
// directories under opts.DataDir if needed.
func NewManager(embedder embeddings.Embedder, registry *Registry, opts Options) (*Manager, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 10
	}

	uploadsDir := filepath.Join(opts.DataDir, "uploads")
	indexDir := filepath.Join(opts.DataDir, "indexes")
	for _, dir := range []string{uploadsDir, indexDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	return &Manager{
		uploadsDir: uploadsDir,
		indexDir:   indexDir,
		parsers:    parser.NewRegistry(),
		chunker:    chunker.New(opts.ChunkSize, opts.ChunkOverlap),
		embedder:   embedder,
		embedFn:    embeddings.ToChromemFunc(embedder),
		registry:   registry,
		log:        slog.Default().With("component", "docstore"),
		cache:      newHandleCache(opts.CacheSize),
	}, nil
}

// UploadsDir returns the directory where source documents are kept.
func (m *Manager) UploadsDir() string { return m.uploadsDir }

// Registry returns the document metadata registry.
func (m *Manager) Registry() *Registry { return m.registry }

// Supported reports whether filename has a registered parser.
func (m *Manager) Supported(filename string) bool { return m.parsers.Supported(filename) }

// indexPath is where docID's persisted index lives.
func (m *Manager) indexPath(docID string) string {
	return filepath.Join(m.indexDir, "chroma_"+docID)
}

// IndexExists reports whether a persisted index exists for docID.
func (m *Manager) IndexExists(docID string) bool {
	_, err := os.Stat(m.indexPath(docID))
	return err == nil
}

// Ingest processes the document at sourcePath under docID. If a persisted
// index already exists it is opened and cached ("loaded"); otherwise the
// source is parsed, chunked and indexed ("created"). Failures are contained:
// the result carries the cause and no partial index is left on disk.
func (m *Manager) Ingest(ctx context.Context, sourcePath, docID string) (result *IngestResult) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("panic during ingest", "doc_id", docID, "panic", r)
			result = &IngestResult{DocID: docID, Status: StatusError, Error: fmt.Sprint(r)}
		}
	}()

	path := m.indexPath(docID)

	// Reuse an existing persisted index instead of rebuilding.
	if m.IndexExists(docID) {
		ix, err := vectordb.Open(path, m.embedFn)
		if err != nil {
			m.log.Error("failed to open existing index", "doc_id", docID, "error", err)
			return &IngestResult{DocID: docID, Status: StatusError, Error: err.Error()}
		}
		m.cacheIndex(docID, ix)
		m.log.Info("loaded existing vector index", "doc_id", docID, "chunks", ix.Count())
		return &IngestResult{DocID: docID, Status: "loaded", Chunks: ix.Count()}
	}

	if _, err := os.Stat(sourcePath); err != nil {
		m.log.Error("source file missing", "doc_id", docID, "path", sourcePath)
		return &IngestResult{DocID: docID, Status: StatusError,
			Error: fmt.Sprintf("%v: %s", ErrNotFound, sourcePath)}
	}

	m.log.Info("processing new document", "doc_id", docID, "path", sourcePath)

	pages, err := m.parsers.ParseFile(sourcePath)
	if err != nil {
		return m.ingestFailed(ctx, docID, err)
	}

	chunks := m.chunker.Chunk(pages)
	if len(chunks) == 0 {
		return m.ingestFailed(ctx, docID, ErrEmptyContent)
	}

	totalPages := len(pages)
	m.log.Info("chunked document", "doc_id", docID, "pages", totalPages, "chunks", len(chunks))

	ix, err := vectordb.Create(ctx, path, filepath.Base(sourcePath), chunks, m.embedFn)
	if err != nil {
		// Atomic-or-absent: a failed build must not leave a partial index.
		if rmErr := os.RemoveAll(path); rmErr != nil {
			m.log.Error("failed to clean up partial index", "doc_id", docID, "error", rmErr)
		}
		return m.ingestFailed(ctx, docID, err)
	}

	if m.registry != nil {
		rec := DocumentRecord{
			ID:         docID,
			Filename:   filepath.Base(sourcePath),
			SourcePath: sourcePath,
			TotalPages: totalPages,
			ChunkCount: len(chunks),
			Status:     StatusReady,
		}
		if err := m.registry.Upsert(ctx, rec); err != nil {
			m.log.Warn("failed to record document metadata", "doc_id", docID, "error", err)
		}
	}

	m.cacheIndex(docID, ix)

	return &IngestResult{
		DocID:      docID,
		Status:     "created",
		TotalPages: totalPages,
		Chunks:     len(chunks),
	}
}

func (m *Manager) ingestFailed(ctx context.Context, docID string, cause error) *IngestResult {
	m.log.Error("ingest failed", "doc_id", docID, "error", cause)
	if m.registry != nil {
		if err := m.registry.SetStatus(ctx, docID, StatusError); err != nil {
			m.log.Warn("failed to record error status", "doc_id", docID, "error", err)
		}
	}
	return &IngestResult{DocID: docID, Status: StatusError, Error: cause.Error()}
}

// Retrieve runs a similarity query against docID's index, returning at most
// k passages ordered by decreasing relevance. pageFilter restricts results
// to the given pages; scoreThreshold drops weaker matches. A document with
// no persisted index fails with ErrNotFound; adapter-level query faults
// degrade to an empty result set.
func (m *Manager) Retrieve(ctx context.Context, docID, query string, k int, pageFilter []int, scoreThreshold float32) ([]Passage, error) {
	ix, err := m.getIndex(docID)
	if err != nil {
		return nil, err
	}

	// chromem's where clause only matches a single exact value, so page
	// filtering happens here: over-fetch and trim after filtering.
	fetchK := k
	if len(pageFilter) > 0 {
		fetchK = k * 4
	}

	hits, err := ix.Query(ctx, query, fetchK)
	if err != nil {
		m.log.Error("index query failed", "doc_id", docID, "error", err)
		return []Passage{}, nil
	}

	var pageSet map[int]bool
	if len(pageFilter) > 0 {
		pageSet = make(map[int]bool, len(pageFilter))
		for _, p := range pageFilter {
			pageSet[p] = true
		}
	}

	passages := make([]Passage, 0, k)
	for _, h := range hits {
		if pageSet != nil && !pageSet[h.Page] {
			continue
		}
		if h.Score < scoreThreshold {
			continue
		}
		passages = append(passages, Passage{
			Content: h.Content,
			Page:    h.Page,
			Source:  h.Source,
			Score:   h.Score,
		})
		if len(passages) >= k {
			break
		}
	}

	m.log.Debug("retrieved passages", "doc_id", docID, "count", len(passages))
	return passages, nil
}

// Delete removes docID everywhere: cache entry first (so no stale handle can
// be served while disk state disappears), then the persisted index, the
// source artifact and the registry row. Every step is best-effort and
// deleting an absent document still reports success.
func (m *Manager) Delete(ctx context.Context, docID string) bool {
	m.mu.Lock()
	if ix, ok := m.cache.remove(docID); ok {
		ix.Close()
		m.log.Info("removed index handle from cache", "doc_id", docID)
	}
	m.mu.Unlock()

	ok := true

	if err := os.RemoveAll(m.indexPath(docID)); err != nil {
		m.log.Error("failed to delete persisted index", "doc_id", docID, "error", err)
		ok = false
	}

	matches, err := filepath.Glob(filepath.Join(m.uploadsDir, docID+".*"))
	if err == nil {
		for _, f := range matches {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				m.log.Error("failed to delete source file", "doc_id", docID, "file", f, "error", err)
				ok = false
			}
		}
	}

	if m.registry != nil {
		if err := m.registry.Delete(ctx, docID); err != nil {
			m.log.Error("failed to delete registry row", "doc_id", docID, "error", err)
			ok = false
		}
	}

	return ok
}

// CachedHandles returns the number of open index handles (for tests and
// diagnostics).
func (m *Manager) CachedHandles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.len()
}

// getIndex resolves docID's handle: cache hit, or a disk load on miss.
func (m *Manager) getIndex(docID string) (*vectordb.Index, error) {
	m.mu.Lock()
	if ix, ok := m.cache.get(docID); ok {
		m.mu.Unlock()
		return ix, nil
	}
	m.mu.Unlock()

	if !m.IndexExists(docID) {
		return nil, fmt.Errorf("%w: no index for document %q, please ingest the document first", ErrNotFound, docID)
	}

	// Load outside the lock so a slow disk open doesn't stall other turns.
	// Two racing loads are harmless: the loser's handle is dropped.
	m.log.Info("loading vector index from disk", "doc_id", docID)
	ix, err := vectordb.Open(m.indexPath(docID), m.embedFn)
	if err != nil {
		return nil, fmt.Errorf("opening index for %q: %w", docID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.cache.get(docID); ok {
		ix.Close()
		return cached, nil
	}
	m.insertLocked(docID, ix)
	return ix, nil
}

// cacheIndex inserts or refreshes docID's handle under the lock.
func (m *Manager) cacheIndex(docID string, ix *vectordb.Index) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertLocked(docID, ix)
}

func (m *Manager) insertLocked(docID string, ix *vectordb.Index) {
	evictedID, evicted := m.cache.put(docID, ix)
	if evicted != nil {
		evicted.Close()
		m.log.Info("evicted least recently used index handle", "doc_id", evictedID)
	}
}
