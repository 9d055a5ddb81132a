package embedding

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/faceval/internal/constants"
)

func setupMockServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"R100_Glint360K","dim":4,"input_size":[96,112]}`))
	})

	mux.HandleFunc("/embed/blob", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Data) != req.Shape[0]*req.Shape[1]*req.Shape[2]*req.Shape[3] {
			http.Error(w, "shape does not match data", http.StatusBadRequest)
			return
		}
		// Echo the first value so the test can check what was sent.
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(embeddingResponse{
			Dim:       4,
			Embedding: []float32{req.Data[0], 1, 2, 3},
			Model:     req.Model,
		})
	})

	return httptest.NewServer(mux)
}

func TestClient_LoadInfo(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	client := NewClient(server.URL+"/", "")
	if client.InputSize() != DefaultInputSize {
		t.Errorf("expected default input size before LoadInfo, got %v", client.InputSize())
	}

	info, err := client.LoadInfo(context.Background())
	if err != nil {
		t.Fatalf("LoadInfo failed: %v", err)
	}
	if info.Dim != 4 {
		t.Errorf("expected dim 4, got %d", info.Dim)
	}
	if client.InputSize() != image.Pt(96, 112) {
		t.Errorf("expected input size 96x112, got %v", client.InputSize())
	}
	if client.Model() != "R100_Glint360K" {
		t.Errorf("expected model from server, got %q", client.Model())
	}
}

func TestClient_Embed(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-model")
	blob := &Blob{Shape: [4]int{1, 3, 1, 1}, Data: []float32{0.5, -0.5, 0.25}}

	emb, err := client.Embed(context.Background(), blob)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(emb) != 4 {
		t.Fatalf("expected 4 values, got %d", len(emb))
	}
	if emb[0] != 0.5 {
		t.Errorf("expected server to receive blob data, got first value %v", emb[0])
	}
}

func TestClient_EmbedErrors(t *testing.T) {
	server := setupMockServer(t)
	defer server.Close()

	client := NewClient(server.URL, "")

	if _, err := client.Embed(context.Background(), nil); err == nil {
		t.Error("expected error for nil blob")
	}

	// Shape that does not match the data is rejected by the server.
	_, err := client.Embed(context.Background(), &Blob{Shape: [4]int{1, 3, 2, 2}, Data: []float32{1}})
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Errorf("expected API error with status 400, got %v", err)
	}
}

func TestClient_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dim":0,"embedding":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Embed(context.Background(), &Blob{Shape: [4]int{1, 3, 1, 1}, Data: []float32{0, 0, 0}})
	if err == nil || !strings.Contains(err.Error(), "empty embedding") {
		t.Errorf("expected empty embedding error, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", "")
	if client.BaseURL() != constants.DefaultEmbeddingURL {
		t.Errorf("expected default URL, got %q", client.baseURL)
	}
	if client.Model() != constants.DefaultEmbeddingModel {
		t.Errorf("expected default model, got %q", client.Model())
	}
}
