package vectordb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"studyassist/internal/chunker"
)

const collectionName = "chunks"

// Hit is one similarity-search candidate.
type Hit struct {
	Content string
	Page    int
	Seq     int
	Source  string
	Score   float32
}

// Index is an open handle to one document's persistent vector index, backed
// by a chromem-go database on disk. Handles are owned by the document store
// manager's cache; Close drops the in-memory state without touching the
// persisted files.
type Index struct {
	db  *chromem.DB
	col *chromem.Collection
}

// Create builds a new persisted index at path from the given chunks. The
// caller is responsible for removing path if Create fails, so a failed build
// never leaves a partial index behind.
func Create(ctx context.Context, path, source string, chunks []chunker.Chunk, embedFunc chromem.EmbeddingFunc) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("create persistent db: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("chunk-%d", c.Seq),
			Content: c.Text,
			Metadata: map[string]string{
				"page":   strconv.Itoa(c.Page),
				"seq":    strconv.Itoa(c.Seq),
				"source": source,
			},
		}
	}

	if err := col.AddDocuments(ctx, docs, 4); err != nil {
		return nil, fmt.Errorf("add documents: %w", err)
	}

	return &Index{db: db, col: col}, nil
}

// Open loads an existing persisted index from path.
func Open(path string, embedFunc chromem.EmbeddingFunc) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := chromem.NewPersistentDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}

	col := db.GetCollection(collectionName, embedFunc)
	if col == nil {
		return nil, fmt.Errorf("collection %q not found in %s", collectionName, path)
	}

	return &Index{db: db, col: col}, nil
}

// Query runs a similarity search and returns at most k hits ordered by
// decreasing score, ties broken by chunk sequence.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	// chromem-go requires nResults <= collection size.
	count := ix.col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := ix.col.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		page, _ := strconv.Atoi(r.Metadata["page"])
		seq, _ := strconv.Atoi(r.Metadata["seq"])
		hits[i] = Hit{
			Content: r.Content,
			Page:    page,
			Seq:     seq,
			Source:  r.Metadata["source"],
			Score:   r.Similarity,
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Seq < hits[j].Seq
	})

	return hits, nil
}

// Count returns the number of chunks stored in the index.
func (ix *Index) Count() int {
	return ix.col.Count()
}

// Close invalidates the handle. chromem holds no file descriptors between
// operations, so there is nothing to release eagerly; in-flight queries on a
// just-evicted handle are allowed to finish, and the memory is reclaimed once
// the last reference is dropped.
func (ix *Index) Close() {}
