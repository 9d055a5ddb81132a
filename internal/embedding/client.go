package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/faceval/internal/constants"
)

// Network computes an embedding for a preprocessed face blob.
type Network interface {
	// InputSize is the width and height the network expects.
	InputSize() image.Point
	Embed(ctx context.Context, blob *Blob) ([]float32, error)
}

// Client runs the recognition network on the inference server.
type Client struct {
	baseURL string
	model   string
	size    image.Point
	client  *http.Client
}

// NewClient creates a new inference client. The input size defaults to 112x112
// until LoadInfo asks the server for the declared one.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultEmbeddingURL
	}
	if model == "" {
		model = constants.DefaultEmbeddingModel
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		size:    DefaultInputSize,
		client:  &http.Client{},
	}
}

// Info describes the model served by the inference server.
type Info struct {
	Model     string `json:"model"`
	Dim       int    `json:"dim"`
	InputSize [2]int `json:"input_size"` // width, height
}

// embedRequest is the request body of the blob endpoint
type embedRequest struct {
	Model string    `json:"model"`
	Shape [4]int    `json:"shape"`
	Data  []float32 `json:"data"`
}

// embeddingResponse represents the response from the inference server
type embeddingResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// BaseURL returns the inference server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Model returns the model name being used
func (c *Client) Model() string {
	return c.model
}

// InputSize returns the network input size.
func (c *Client) InputSize() image.Point {
	return c.size
}

// LoadInfo fetches the model description and adopts its declared input size.
func (c *Client) LoadInfo(ctx context.Context) (*Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/info", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if info.InputSize[0] > 0 && info.InputSize[1] > 0 {
		c.size = image.Pt(info.InputSize[0], info.InputSize[1])
	}
	if info.Model != "" {
		c.model = info.Model
	}

	return &info, nil
}

// Embed runs the network on a single blob.
func (c *Client) Embed(ctx context.Context, blob *Blob) ([]float32, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, errors.New("empty blob")
	}

	reqBody, err := json.Marshal(embedRequest{Model: c.model, Shape: blob.Shape, Data: blob.Data})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/blob", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(embResp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return embResp.Embedding, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
