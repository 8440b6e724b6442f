// Package equipe is the client for the Equipe event-management API: the
// existing-collection reads used to dedupe and the batch POST that does
// all writing. The meeting URL and API key belong to the caller's
// meeting, so every call takes both.
package equipe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jumpingaccess/Hippodata2Equipe/pkg/metrics"
)

// Person is one existing person record, reduced to the fields needed for
// identity dedupe.
type Person struct {
	ForeignID string `json:"foreign_id"`
	FeiID     string `json:"fei_id"`
}

// Horse is one existing horse record.
type Horse struct {
	ForeignID string `json:"foreign_id"`
	FeiID     string `json:"fei_id"`
}

// Club is one existing club record.
type Club struct {
	ForeignID string `json:"foreign_id"`
}

// Competition is one existing competition record. Equipe exposes its own
// numeric id as "kq" and the source class link as "foreignid" (no
// underscore) on this endpoint; the id addresses the per-competition
// starts and results endpoints.
type Competition struct {
	ID        int    `json:"kq"`
	ForeignID string `json:"foreignid"`
	Klass     string `json:"klass"`
	Lag       bool   `json:"lag"`
}

// Start is one existing start record, reduced to the fields the imported
// status check inspects. The result fields stay untyped: Equipe reports
// numbers, numeric strings or null depending on the competition state.
type Start struct {
	LagID  any `json:"lag_id"`
	Team   any `json:"team"`
	Grundf any `json:"grundf"`
	Grundt any `json:"grundt"`
}

// InTeam reports whether the start is attached to a team.
func (s Start) InTeam() bool {
	return s.LagID != nil || s.Team != nil
}

// HasResult reports whether the start carries a scored round: a numeric
// grundf or grundt. Null or non-numeric markers do not count.
func (s Start) HasResult() bool {
	return isNumeric(s.Grundf) || isNumeric(s.Grundt)
}

func isNumeric(v any) bool {
	switch t := v.(type) {
	case float64:
		return true
	case json.Number:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return err == nil
	default:
		return false
	}
}

// BatchReply is the raw outcome of a batch POST: the HTTP code plus the
// response body, passed through for caller-side debugging.
type BatchReply struct {
	StatusCode int
	Body       string
}

// OK reports whether Equipe accepted the batch.
func (r BatchReply) OK() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

// Client talks to one Equipe installation.
type Client interface {
	People(ctx context.Context, meetingURL, apiKey string) ([]Person, error)
	Horses(ctx context.Context, meetingURL, apiKey string) ([]Horse, error)
	Clubs(ctx context.Context, meetingURL, apiKey string) ([]Club, error)
	Competitions(ctx context.Context, meetingURL, apiKey string) ([]Competition, error)
	Starts(ctx context.Context, meetingURL, apiKey string, competitionID int) ([]Start, error)
	Results(ctx context.Context, meetingURL, apiKey string, competitionID int) ([]Start, error)

	// SubmitBatch posts a batch document. txUUID is the transaction id;
	// blank generates a fresh one.
	SubmitBatch(ctx context.Context, meetingURL, apiKey string, batch any, txUUID string) (BatchReply, error)
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	client *http.Client
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

// New builds a client.
func New(opts ...Option) *HTTPClient {
	h := &HTTPClient{
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// People implements Client.
func (h *HTTPClient) People(ctx context.Context, meetingURL, apiKey string) ([]Person, error) {
	var out []Person
	if err := h.get(ctx, "people", meetingURL, "/people.json", apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Horses implements Client.
func (h *HTTPClient) Horses(ctx context.Context, meetingURL, apiKey string) ([]Horse, error) {
	var out []Horse
	if err := h.get(ctx, "horses", meetingURL, "/horses.json", apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clubs implements Client.
func (h *HTTPClient) Clubs(ctx context.Context, meetingURL, apiKey string) ([]Club, error) {
	var out []Club
	if err := h.get(ctx, "clubs", meetingURL, "/clubs.json", apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Competitions implements Client.
func (h *HTTPClient) Competitions(ctx context.Context, meetingURL, apiKey string) ([]Competition, error) {
	var out []Competition
	if err := h.get(ctx, "competitions", meetingURL, "/competitions.json", apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Starts implements Client.
func (h *HTTPClient) Starts(ctx context.Context, meetingURL, apiKey string, competitionID int) ([]Start, error) {
	var out []Start
	path := fmt.Sprintf("/competitions/%d/starts.json", competitionID)
	if err := h.get(ctx, "starts", meetingURL, path, apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Results implements Client. Equipe serves results per section; H covers
// the riding starts this bridge writes.
func (h *HTTPClient) Results(ctx context.Context, meetingURL, apiKey string, competitionID int) ([]Start, error) {
	var out []Start
	path := fmt.Sprintf("/competitions/%d/H/results.json", competitionID)
	if err := h.get(ctx, "results", meetingURL, path, apiKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitBatch implements Client. A non-2xx reply is not an error here:
// the caller decides how to report it, body included.
func (h *HTTPClient) SubmitBatch(ctx context.Context, meetingURL, apiKey string, batch any, txUUID string) (BatchReply, error) {
	if meetingURL == "" {
		return BatchReply{}, ErrEmptyMeetingURL
	}
	if txUUID == "" {
		txUUID = uuid.NewString()
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return BatchReply{}, fmt.Errorf("equipe: marshal batch: %w", err)
	}

	url := strings.TrimRight(meetingURL, "/") + "/batch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return BatchReply{}, fmt.Errorf("equipe: build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", apiKey)
	req.Header.Set("X-Transaction-Uuid", txUUID)

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("equipe", "batch", "error")
		return BatchReply{}, fmt.Errorf("equipe: batch: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest("equipe", "batch", strconv.Itoa(resp.StatusCode))
	metrics.RecordUpstreamLatency("equipe", "batch", float64(time.Since(started).Milliseconds()))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return BatchReply{}, fmt.Errorf("equipe: read batch response: %w", err)
	}

	return BatchReply{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

func (h *HTTPClient) get(ctx context.Context, operation, meetingURL, path, apiKey string, out any) error {
	if meetingURL == "" {
		return ErrEmptyMeetingURL
	}

	url := strings.TrimRight(meetingURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("equipe: build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", apiKey)

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest("equipe", operation, "error")
		return fmt.Errorf("equipe: %s: %w", operation, err)
	}
	defer resp.Body.Close()

	metrics.RecordUpstreamRequest("equipe", operation, strconv.Itoa(resp.StatusCode))
	metrics.RecordUpstreamLatency("equipe", operation, float64(time.Since(started).Milliseconds()))

	if resp.StatusCode != http.StatusOK {
		return statusError(operation, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("equipe: decode %s response: %w", operation, err)
	}
	return nil
}
