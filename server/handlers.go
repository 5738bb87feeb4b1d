package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/forgelabs/promptforge/export"
	"github.com/forgelabs/promptforge/prompts"
	"github.com/forgelabs/promptforge/salesforce"
	"github.com/forgelabs/promptforge/session"
	"github.com/forgelabs/promptforge/workflow"
)

// CredentialsBody is the wire form of org credentials plus the model key.
type CredentialsBody struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	SecurityToken string `json:"security_token"`
	Domain        string `json:"domain"`
	APIKey        string `json:"api_key"`
}

// ExtractBody is the request body for POST /api/step1-extract.
type ExtractBody struct {
	Credentials        CredentialsBody `json:"credentials"`
	UseCaseDescription string          `json:"use_case_description"`
}

// GenerateBody is the request body for POST /api/step2-generate-prompts.
type GenerateBody struct {
	SessionID string            `json:"session_id"`
	UseCases  []prompts.UseCase `json:"use_cases"`
}

// ErrorBody is the uniform error response shape.
type ErrorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var body ExtractBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Credentials.APIKey == "" {
		s.writeError(w, http.StatusBadRequest, "missing api_key", "")
		return
	}

	result, err := s.pipeline.Extract(r.Context(), workflow.ExtractRequest{
		Credentials: salesforce.Credentials{
			Username:      body.Credentials.Username,
			Password:      body.Credentials.Password,
			SecurityToken: body.Credentials.SecurityToken,
			Domain:        body.Credentials.Domain,
		},
		APIKey:             body.Credentials.APIKey,
		UseCaseDescription: body.UseCaseDescription,
	})
	if err != nil {
		var connErr *salesforce.ConnectionError
		if errors.As(err, &connErr) {
			s.metrics.ExtractionsFailed.Inc()
			s.writeError(w, http.StatusBadGateway, "salesforce connection failed", connErr.Error())
			return
		}
		s.metrics.ExtractionsFailed.Inc()
		s.writeError(w, http.StatusInternalServerError, "extraction failed", err.Error())
		return
	}

	s.metrics.Extractions.Inc()
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body GenerateBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "missing session_id", "")
		return
	}

	result, err := s.pipeline.Generate(r.Context(), body.SessionID, body.UseCases)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found", "")
			return
		}
		s.writeError(w, http.StatusInternalServerError, "prompt generation failed", err.Error())
		return
	}

	s.metrics.PromptsGenerated.Add(float64(result.TotalPrompts))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, info, ok := s.downloadTarget(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("test_prompts_%s%s", shortID(sess.ID), info.Extension)
	switch info.Name {
	case export.FormatJSON:
		data, err := export.ResultsJSON(sess)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "render failed", err.Error())
			return
		}
		writeAttachment(w, info.MIMEType, filename, data)
	case export.FormatCSV:
		content, err := export.PromptsCSV(sess.Prompts)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "render failed", err.Error())
			return
		}
		writeAttachment(w, info.MIMEType, filename, []byte(content))
	}
}

func (s *Server) handleDownloadMetadata(w http.ResponseWriter, r *http.Request) {
	sess, info, ok := s.downloadTarget(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("metadata_%s%s", shortID(sess.ID), info.Extension)
	switch info.Name {
	case export.FormatJSON:
		data, err := export.MetadataJSON(sess.Document)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "render failed", err.Error())
			return
		}
		writeAttachment(w, info.MIMEType, filename, data)
	case export.FormatCSV:
		content, err := export.MetadataCSV(sess.Document)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "render failed", err.Error())
			return
		}
		writeAttachment(w, info.MIMEType, filename, []byte(content))
	}
}

// downloadTarget resolves the session and format path parameters shared by
// both download routes. Format errors are 400, unknown sessions 404.
func (s *Server) downloadTarget(w http.ResponseWriter, r *http.Request) (*session.Session, export.FormatInfo, bool) {
	info, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), "")
		return nil, export.FormatInfo{}, false
	}

	sess, err := s.store.Get(r.Context(), r.PathValue("session_id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "session not found", "")
		} else {
			s.writeError(w, http.StatusInternalServerError, "session lookup failed", err.Error())
		}
		return nil, export.FormatInfo{}, false
	}
	return sess, info, true
}

// handleCleanup deletes the session. Deleting an unknown session succeeds;
// cleanup is idempotent.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("session_id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, "cleanup failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Session cleaned up",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": Version,
	})
}

// decodeBody reads a capped JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg, details string) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", msg, "details", details)
	}
	writeJSON(w, status, ErrorBody{
		Error:     msg,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing to recover.
		_ = err
	}
}

func writeAttachment(w http.ResponseWriter, mimeType, filename string, data []byte) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// shortID truncates a session UUID for filenames.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
