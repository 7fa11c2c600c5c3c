package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/receipt-splitter/internal/scanning"
)

// maxUploadSize allows high-resolution phone photos
const maxUploadSize = int64(50 << 20)

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// jsonError writes a {"error": message} response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// sessionErrorStatus maps workflow errors to HTTP status codes
func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

// handleRoster returns the participants and the split options offered per item
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	roster := s.service.Roster()
	writeJSON(w, http.StatusOK, map[string]any{
		"participants": roster.Participants(),
		"options":      roster.Options(),
	})
}

// handleUploadReceipt recognizes an uploaded receipt and opens a session for it
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		errorMsg := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		errorMsg := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			errorMsg = "No file was selected. Please choose a receipt image to upload."
		}
		jsonError(w, errorMsg, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = scanning.ContentTypeFromFilename(header.Filename)
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	session, err := s.service.ProcessReceipt(r.Context(), header.Filename, data, contentType)
	if err != nil {
		msg := "Could not read the receipt. Please upload it again."
		switch {
		case errors.Is(err, scanning.ErrNoText):
			msg = "No text was found on the receipt. Please upload a sharper photo."
		case errors.Is(err, scanning.ErrRecognizerUnavailable):
			msg = "The text recognizer is unavailable right now. Please try again later."
		}
		jsonError(w, msg, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// handleGetSession returns a single session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.PathValue("id"))
	if err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGetSessionFile serves the uploaded receipt of a session
func (s *Server) handleGetSessionFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetSessionFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	setCORSHeaders(w)
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteSession discards a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSession(r.PathValue("id")); err != nil {
		corsError(w, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSelectPayer records who paid the receipt
func (s *Server) handleSelectPayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payer string `json:"payer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	session, err := s.service.SelectPayer(r.PathValue("id"), req.Payer)
	if err != nil {
		slog.Warn("Error selecting payer", "error", err)
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleAssignSplits assigns the current item, or all remaining items, to splits
func (s *Server) handleAssignSplits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Split   string   `json:"split"`
		Splits  []string `json:"splits"`
		Members []string `json:"members"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	var (
		session *Session
		err     error
	)
	switch {
	case req.Split != "":
		session, err = s.service.AssignSplit(id, req.Split)
	case len(req.Splits) > 0:
		session, err = s.service.AssignAll(id, req.Splits)
	case len(req.Members) > 0:
		session, err = s.service.AssignMembers(id, req.Members)
	default:
		jsonError(w, "one of split, splits or members is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Warn("Error assigning split", "error", err)
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleResult returns the balances of a completed session
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Result(r.PathValue("id"))
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}

	if r.URL.Query().Get("format") == "text" {
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, result.Report(s.currency))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
