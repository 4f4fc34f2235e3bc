package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studyassist/internal/agent"
	"studyassist/internal/db"
	"studyassist/internal/docstore"
	"studyassist/internal/llm"
	"studyassist/internal/tools"
)

type mockEmbedder struct{}

func (mockEmbedder) Name() string    { return "mock" }
func (mockEmbedder) Dimensions() int { return 4 }

func (mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 4)
		v[0] = 0.1
		if strings.Contains(text, "alpha") {
			v[1] = 1
		}
		var norm float64
		for _, x := range v {
			norm += float64(x) * float64(x)
		}
		norm = math.Sqrt(norm)
		for j := range v {
			v[j] = float32(float64(v[j]) / norm)
		}
		out[i] = v
	}
	return out, nil
}

// scriptedProvider replays canned responses, streaming content via onDelta.
type scriptedProvider struct {
	responses []*llm.ChatResponse
	calls     int
}

func (p *scriptedProvider) ChatStream(_ context.Context, _ llm.ChatRequest, onDelta llm.StreamHandler) (*llm.ChatResponse, error) {
	if p.calls >= len(p.responses) {
		return &llm.ChatResponse{Content: "done"}, nil
	}
	resp := p.responses[p.calls]
	p.calls++
	if resp.Content != "" {
		onDelta(resp.Content)
	}
	return resp, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func newTestServer(t *testing.T, provider llm.Provider) (*Server, *docstore.Manager) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := docstore.NewManager(mockEmbedder{}, docstore.NewRegistry(database), docstore.Options{
		DataDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if provider == nil {
		provider = &scriptedProvider{}
	}
	ag := agent.New(provider, tools.NewRegistry(store), agent.NewSQLiteCheckpoints(database), agent.Options{})
	return New(Config{Port: 0, AllowAll: true}, store, ag), store
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestUploadAndList(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "notes.txt", "alpha study notes"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		DocID    string `json:"doc_id"`
		Status   string `json:"status"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if result.Status != "created" || result.DocID == "" {
		t.Fatalf("result = %+v", result)
	}
	if result.Filename != "notes.txt" {
		t.Errorf("filename = %q, want notes.txt", result.Filename)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}

	var list struct {
		Documents []struct {
			DocID    string `json:"doc_id"`
			Filename string `json:"filename"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(list.Documents))
	}
	if list.Documents[0].Filename != "notes.txt" {
		t.Errorf("listed filename = %q", list.Documents[0].Filename)
	}
}

func TestUploadMissingFile(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("no form"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "image.png", "not a document"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file type") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestDeleteDocument(t *testing.T) {
	srv, store := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "gone.txt", "alpha doomed content"))
	var result struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/documents/"+result.DocID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if store.IndexExists(result.DocID) {
		t.Error("index survived deletion")
	}
}

func TestChatValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"missing fields", `{"doc_id": "x"}`, http.StatusBadRequest},
		{"unknown document", `{"doc_id": "ghost", "message": "hi"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestChatStreamsEvents(t *testing.T) {
	provider := &scriptedProvider{responses: []*llm.ChatResponse{
		{Content: "An answer about alpha."},
	}}
	srv, _ := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "subject.txt", "alpha subject matter"))
	var uploaded struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	body := `{"doc_id": "` + uploaded.DocID + `", "message": "tell me about alpha"}`
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	out := rec.Body.String()
	if !strings.Contains(out, `"type": "checkpoint"`) {
		t.Error("missing checkpoint event for a new conversation")
	}
	if !strings.Contains(out, `"type": "content"`) || !strings.Contains(out, "An answer about alpha.") {
		t.Error("missing streamed content")
	}
	if strings.Count(out, `"type": "end"`) != 1 {
		t.Error("stream must end with exactly one end event")
	}
	if !strings.HasSuffix(out, "data: {\"type\": \"end\"}\n\n") {
		t.Errorf("end event not last: %q", out)
	}
}

func TestChatResumesCheckpoint(t *testing.T) {
	provider := &scriptedProvider{responses: []*llm.ChatResponse{
		{Content: "first"},
		{Content: "second"},
	}}
	srv, _ := newTestServer(t, provider)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, uploadRequest(t, "subject.txt", "alpha material"))
	var uploaded struct {
		DocID string `json:"doc_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	body := `{"doc_id": "` + uploaded.DocID + `", "message": "question one"}`
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	// Pull the checkpoint ID out of the first event.
	var checkpointID string
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.Contains(line, `"type": "checkpoint"`) {
			var ev struct {
				CheckpointID string `json:"checkpoint_id"`
			}
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatal(err)
			}
			checkpointID = ev.CheckpointID
		}
	}
	if checkpointID == "" {
		t.Fatal("no checkpoint event in first turn")
	}

	rec = httptest.NewRecorder()
	body = `{"doc_id": "` + uploaded.DocID + `", "message": "question two", "checkpoint_id": "` + checkpointID + `"}`
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body)))

	out := rec.Body.String()
	if strings.Contains(out, `"type": "checkpoint"`) {
		t.Error("resumed turn must not announce a new checkpoint")
	}
	if !strings.Contains(out, "second") {
		t.Errorf("missing second answer in %q", out)
	}
}
