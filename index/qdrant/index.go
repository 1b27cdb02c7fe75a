// Copyright 2026 Inkwell Documents
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/index"
)

const defaultTimeout = 15 * time.Second

// Index implements index.VectorIndex against Qdrant's REST API with
// cosine distance. Points are written with wait=true so Upsert returns
// only after Qdrant has applied the whole batch; Qdrant applies one
// upsert request atomically, which is what gives the batch its
// all-or-nothing behavior at this boundary.
type Index struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

var _ index.VectorIndex = (*Index)(nil)

// Option configures an Index.
type Option func(*Index)

// WithAPIKey sets the api-key header for Qdrant Cloud or secured servers.
func WithAPIKey(key string) Option {
	return func(i *Index) { i.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Index) {
		if client != nil {
			i.client = client
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates a Qdrant index client for the server at baseURL,
// e.g. "http://localhost:6333".
func New(baseURL string, opts ...Option) (*Index, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: qdrant base URL is required", core.ErrInvalidConfiguration)
	}

	i := &Index{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default().With("component", "qdrant-index"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection if absent and verifies the
// dimension if present.
func (i *Index) EnsureCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension %d must be positive", core.ErrInvalidConfiguration, dimension)
	}

	var info collectionInfo
	status, err := i.doRequest(ctx, http.MethodGet, "/collections/"+name, nil, &info)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusOK:
		existing := info.Result.Config.Params.Vectors.Size
		if existing != dimension {
			return fmt.Errorf("%w: collection %q has dimension %d, want %d",
				core.ErrDimensionMismatch, name, existing, dimension)
		}
		return nil
	case status == http.StatusNotFound:
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		status, err := i.doRequest(ctx, http.MethodPut, "/collections/"+name, body, nil)
		if err != nil {
			return err
		}
		if status >= 400 {
			return fmt.Errorf("%w: create collection %q: status %d", core.ErrIndexUnavailable, name, status)
		}
		i.logger.Info("collection created", "collection", name, "dimension", dimension)
		return nil
	default:
		return fmt.Errorf("%w: inspect collection %q: status %d", core.ErrIndexUnavailable, name, status)
	}
}

// Upsert writes the batch in one request with wait=true.
func (i *Index) Upsert(ctx context.Context, collection string, records []core.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	for idx := range records {
		if err := core.ValidateRecord(&records[idx]); err != nil {
			return err
		}
	}

	points := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		points = append(points, map[string]any{
			"id":     rec.Id,
			"vector": rec.Vector,
			"payload": map[string]any{
				"text":   rec.Text,
				"source": rec.Metadata.Source,
				"page":   rec.Metadata.Page,
			},
		})
	}

	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", collection)
	status, err := i.doRequest(ctx, http.MethodPut, path, body, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("%w: upsert %d points into %q: status %d",
			core.ErrIndexUnavailable, len(points), collection, status)
	}

	i.logger.Debug("points upserted", "collection", collection, "count", len(points))
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float32        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Query runs a k-nearest-neighbor search. A missing collection returns
// an empty result; absence of data is not a failure.
func (i *Index) Query(ctx context.Context, collection string, vector []float32, k int) ([]core.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	path := fmt.Sprintf("/collections/%s/points/search", collection)

	var resp searchResponse
	status, err := i.doRequest(ctx, http.MethodPost, path, body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: search %q: status %d", core.ErrIndexUnavailable, collection, status)
	}

	results := make([]core.RetrievalResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		record := core.IndexedRecord{Id: fmt.Sprint(hit.ID)}
		if text, ok := hit.Payload["text"].(string); ok {
			record.Text = text
		}
		if source, ok := hit.Payload["source"].(string); ok {
			record.Metadata.Source = source
		}
		if page, ok := hit.Payload["page"].(float64); ok {
			record.Metadata.Page = int(page)
		}
		results = append(results, core.RetrievalResult{
			Record: record,
			Score:  hit.Score,
		})
	}
	return results, nil
}

// Close is a no-op; the HTTP client holds no persistent resources.
func (i *Index) Close() error {
	return nil
}

// doRequest issues one JSON request. Transport failures wrap
// core.ErrIndexUnavailable; HTTP status handling is left to callers
// because 404 means different things per endpoint.
func (i *Index) doRequest(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, i.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if i.apiKey != "" {
		req.Header.Set("api-key", i.apiKey)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", core.ErrIndexUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read response: %w", core.ErrIndexUnavailable, err)
	}

	if out != nil && resp.StatusCode < 400 {
		if err := json.Unmarshal(payload, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode response: %w", core.ErrIndexUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}
