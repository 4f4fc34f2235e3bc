package vectordb

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"

	"studyassist/internal/chunker"
)

// mockEmbedFunc maps known keywords to fixed orthogonal directions so
// similarity ordering in tests is deterministic.
func mockEmbedFunc() chromem.EmbeddingFunc {
	axes := map[string]int{"alpha": 0, "beta": 1, "gamma": 2}
	return func(_ context.Context, text string) ([]float32, error) {
		v := make([]float32, 4)
		for word, axis := range axes {
			if strings.Contains(text, word) {
				v[axis] = 1
			}
		}
		v[3] = 0.1 // keep every vector nonzero
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
		return v, nil
	}
}

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{Text: "all about alpha particles", Page: 0, Seq: 0},
		{Text: "beta decay explained", Page: 1, Seq: 1},
		{Text: "gamma radiation overview", Page: 2, Seq: 2},
	}
}

func TestCreateAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ix")

	ix, err := Create(ctx, path, "test.pdf", testChunks(), mockEmbedFunc())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ix.Count() != 3 {
		t.Fatalf("Count = %d, want 3", ix.Count())
	}

	hits, err := ix.Query(ctx, "tell me about beta", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if !strings.Contains(hits[0].Content, "beta") {
		t.Errorf("top hit = %q, want the beta chunk", hits[0].Content)
	}
	if hits[0].Page != 1 {
		t.Errorf("top hit page = %d, want 1", hits[0].Page)
	}
	if hits[0].Source != "test.pdf" {
		t.Errorf("top hit source = %q, want test.pdf", hits[0].Source)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("hits not ordered by score: %v then %v", hits[0].Score, hits[1].Score)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ix")

	if _, err := Create(ctx, path, "roundtrip.pdf", testChunks(), mockEmbedFunc()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ix, err := Open(path, mockEmbedFunc())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ix.Count() != 3 {
		t.Fatalf("Count after reopen = %d, want 3", ix.Count())
	}

	hits, err := ix.Query(ctx, "alpha", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 || !strings.Contains(hits[0].Content, "alpha") {
		t.Fatalf("got %v, want the alpha chunk", hits)
	}
}

func TestOpenMissingPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope"), mockEmbedFunc()); err == nil {
		t.Fatal("expected error opening a missing index")
	}
}

func TestQueryClampsKToCount(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ix")

	ix, err := Create(ctx, path, "small.pdf", testChunks()[:1], mockEmbedFunc())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hits, err := ix.Query(ctx, "anything alpha", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
}

func TestQueryZeroK(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ix")

	ix, err := Create(ctx, path, "doc.pdf", testChunks(), mockEmbedFunc())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hits, err := ix.Query(ctx, "alpha", 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if hits != nil {
		t.Fatalf("got %v, want nil for k=0", hits)
	}
}
