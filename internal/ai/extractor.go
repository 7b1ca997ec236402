// Package ai integrates the document import feature with an external
// text-extraction (OCR) service. The service itself is opaque: this package
// only sends bytes and receives text, then applies local heuristics to turn
// that text into draft transactions for the user to review.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Extractor turns an uploaded document into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// HTTPExtractor calls the external extraction service over HTTP.
type HTTPExtractor struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewHTTPExtractor builds an extractor for the service at baseURL.
func NewHTTPExtractor(baseURL, apiKey string) *HTTPExtractor {
	return &HTTPExtractor{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type extractRequest struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"` // base64 over the wire via encoding/json
}

type extractResponse struct {
	Text string `json:"text"`
}

// Extract posts the document to the service's /v1/extract endpoint.
func (e *HTTPExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	body, err := json.Marshal(extractRequest{MimeType: mimeType, Data: data})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.BaseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.APIKey)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Bound the error snippet so a misbehaving service cannot blow up logs.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("extraction service: status %d: %s", resp.StatusCode, snippet)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Text, nil
}
