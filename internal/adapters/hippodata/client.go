// Package hippodata is the read-side client for the Hippodata scoring
// API. All requests carry a bearer token and return the uppercase-keyed
// documents decoded by the model package.
package hippodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/model"
	"github.com/jumpingaccess/Hippodata2Equipe/pkg/metrics"
)

// Client fetches scoring documents for one event.
type Client interface {
	// Event returns the show header and its class list.
	Event(ctx context.Context, eventID string) (*model.EventDocument, error)

	// Startlist returns the full startlist of one class.
	Startlist(ctx context.Context, eventID, classID string) (*model.ClassDocument, error)

	// Resultlist returns the results of one class.
	Resultlist(ctx context.Context, eventID, classID string) (*model.ClassDocument, error)
}

// HTTPClient implements Client against a live Hippodata endpoint.
type HTTPClient struct {
	baseURL string
	bearer  string
	client  *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.client.Timeout = d
	}
}

// New builds a client for the given base URL and bearer token.
func New(baseURL, bearer string, opts ...Option) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		bearer:  bearer,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Event implements Client.
func (h *HTTPClient) Event(ctx context.Context, eventID string) (*model.EventDocument, error) {
	var doc model.EventDocument
	path := fmt.Sprintf("/scoring/event/%s", eventID)
	if err := h.get(ctx, "event", path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Startlist implements Client.
func (h *HTTPClient) Startlist(ctx context.Context, eventID, classID string) (*model.ClassDocument, error) {
	var doc model.ClassDocument
	path := fmt.Sprintf("/scoring/event/%s/startlist/%s/all", eventID, classID)
	if err := h.get(ctx, "startlist", path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Resultlist implements Client.
func (h *HTTPClient) Resultlist(ctx context.Context, eventID, classID string) (*model.ClassDocument, error) {
	var doc model.ClassDocument
	path := fmt.Sprintf("/scoring/event/%s/resultlist/%s", eventID, classID)
	if err := h.get(ctx, "resultlist", path, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (h *HTTPClient) get(ctx context.Context, operation, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("hippodata: build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+h.bearer)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("hippodata", operation, "error")
		return fmt.Errorf("hippodata: %s: %w", operation, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest("hippodata", operation, strconv.Itoa(resp.StatusCode))
	metrics.RecordUpstreamLatency("hippodata", operation, float64(time.Since(started).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		return statusError(operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hippodata: decode %s response: %w", operation, err)
	}
	return nil
}
