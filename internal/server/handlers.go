package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/andresv-qr/lumqr/internal/cascade"
	"github.com/andresv-qr/lumqr/internal/models"
	"github.com/andresv-qr/lumqr/internal/version"
)

// errorResponse is the JSON body for request-level failures.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// readImageBytes extracts the uploaded image from a multipart form ("file"
// or "image" field) or from the raw request body.
func readImageBytes(r *http.Request, maxBytes int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	ct := r.Header.Get("Content-Type")
	if err := r.ParseMultipartForm(maxBytes); err == nil {
		for _, field := range []string{"file", "image"} {
			f, hdr, err := r.FormFile(field)
			if err != nil {
				continue
			}
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, "", err
			}
			return data, hdr.Header.Get("Content-Type"), nil
		}
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return data, ct, nil
}

// handleDetect runs the cascade on an uploaded image. A clean miss is still
// HTTP 200: the caller asked a question and got an answer. Only malformed
// input, oversized bodies and an unloadable model map to error statuses.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.config.MaxUploadMB) << 20
	data, declaredMIME, err := readImageBytes(r, maxBytes)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
			Error:     "request body too large or unreadable",
			RequestID: RequestID(r.Context()),
		})
		return
	}

	result := s.cascade.Detect(r.Context(), data, declaredMIME)

	status := http.StatusOK
	if !result.Success {
		switch result.Reason {
		case cascade.ReasonDecodeError:
			status = http.StatusBadRequest
		case cascade.ReasonModelUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, result)
}

// handleHealth reports liveness and build information.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	v, commit, date := version.Info()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    v,
		"git_commit": commit,
		"build_date": date,
	})
}

// handleModels lists detector models available on disk.
func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"models": models.ListDetectorModels(s.modelsDir),
	})
}
