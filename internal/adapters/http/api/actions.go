package api

import (
	"net/http"

	"github.com/jumpingaccess/Hippodata2Equipe/internal/app"
	"github.com/jumpingaccess/Hippodata2Equipe/internal/domain/transform"
)

type eventInfoRequest struct {
	ShowID string `json:"show_id"`
}

func (s *Server) handleEventInfo(w http.ResponseWriter, r *http.Request) {
	var req eventInfoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info, err := s.deps.FetchEventInfo(r.Context(), req.ShowID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeResult(w, info)
}

type importedStatusRequest struct {
	MeetingURL string `json:"meeting_url"`
	APIKey     string `json:"api_key"`
}

type importedStatusResponse struct {
	Existing *app.ImportedStatus `json:"existing"`
}

func (s *Server) handleImportedStatus(w http.ResponseWriter, r *http.Request) {
	var req importedStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := s.deps.ImportedStatus(r.Context(), req.MeetingURL, req.APIKey)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeResult(w, importedStatusResponse{Existing: status})
}

type importClassesRequest struct {
	ShowID     string                `json:"show_id"`
	APIKey     string                `json:"api_key"`
	MeetingURL string                `json:"meeting_url"`
	Selections []transform.Selection `json:"selections"`
}

func (s *Server) handleImportClasses(w http.ResponseWriter, r *http.Request) {
	var req importClassesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := s.deps.ImportClasses(r.Context(), req.ShowID, req.APIKey, req.MeetingURL, req.Selections)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeResult(w, report)
}

type importRequest struct {
	EventID      string                `json:"event_id"`
	APIKey       string                `json:"api_key"`
	MeetingURL   string                `json:"meeting_url"`
	Competitions []app.CompetitionTask `json:"competitions"`
}

func (s *Server) handleImportStartlists(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := s.deps.ImportStartlists(r.Context(), req.EventID, req.APIKey, req.MeetingURL, req.Competitions)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeResult(w, report)
}

func (s *Server) handleImportResults(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}

	report, err := s.deps.ImportResults(r.Context(), req.EventID, req.APIKey, req.MeetingURL, req.Competitions)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeResult(w, report)
}

type sendBatchRequest struct {
	MeetingURL      string         `json:"meeting_url"`
	APIKey          string         `json:"api_key"`
	Batch           map[string]any `json:"batch"`
	TransactionUUID string         `json:"transaction_uuid"`
}

type sendBatchResponse struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// handleSendBatch proxies a prepared batch document. A non-2xx Equipe
// reply is reported as a failure but still carries the code and body.
func (s *Server) handleSendBatch(w http.ResponseWriter, r *http.Request) {
	var req sendBatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reply, err := s.deps.SendBatch(r.Context(), req.MeetingURL, req.APIKey, req.Batch, req.TransactionUUID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	data := sendBatchResponse{StatusCode: reply.StatusCode, Body: reply.Body}
	if !reply.OK() {
		writeJSON(w, http.StatusOK, response{Success: false, Data: data})
		return
	}
	writeResult(w, data)
}
