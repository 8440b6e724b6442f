package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	equipeapi "github.com/jumpingaccess/Hippodata2Equipe/internal/adapters/equipe"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/app"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/transform"
)

// Dependencies required by the HTTP handlers. The interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	FetchEventInfo(ctx context.Context, showID string) (*app.EventInfo, error)
	ImportedStatus(ctx context.Context, meetingURL, apiKey string) (*app.ImportedStatus, error)
	ImportClasses(ctx context.Context, showID, apiKey, meetingURL string, selections []transform.Selection) (*app.ClassImportReport, error)
	ImportStartlists(ctx context.Context, eventID, apiKey, meetingURL string, tasks []app.CompetitionTask) (*app.ImportReport, error)
	ImportResults(ctx context.Context, eventID, apiKey, meetingURL string, tasks []app.CompetitionTask) (*app.ImportReport, error)
	SendBatch(ctx context.Context, meetingURL, apiKey string, batch map[string]any, txUUID string) (equipeapi.BatchReply, error)
}

// Server wires HTTP routes for the import API.
type Server struct {
	deps          Dependencies
	healthHandler *HealthHandler
}

// NewServer creates the API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		deps:          deps,
		healthHandler: NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/api/event-info", MetricsMiddleware(s.handleEventInfo, "event_info"))
	mux.HandleFunc("/api/imported-status", MetricsMiddleware(s.handleImportedStatus, "imported_status"))
	mux.HandleFunc("/api/import/classes", MetricsMiddleware(s.handleImportClasses, "import_classes"))
	mux.HandleFunc("/api/import/startlists", MetricsMiddleware(s.handleImportStartlists, "import_startlists"))
	mux.HandleFunc("/api/import/results", MetricsMiddleware(s.handleImportResults, "import_results"))
	mux.HandleFunc("/api/batch", MetricsMiddleware(s.handleSendBatch, "send_batch"))
}

// response is the uniform action reply envelope.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

// writeFailure maps an error onto the envelope: validation mistakes are
// the caller's (400), anything else is an upstream or internal failure
// (502).
func writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, app.ErrValidation) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, response{Success: false, Error: err.Error()})
}

// decodeBody reads one JSON action body. Only POST is accepted.
func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, response{Success: false, Error: ErrMethod.Error()})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Success: false, Error: ErrBadRequest.Error()})
		return false
	}
	return true
}
