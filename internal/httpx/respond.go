package httpx

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same envelope: an outcome flag, a
// human-readable message, and the payload (or error messages).
type response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Object  any      `json:"object,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

type pagedResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Object     any    `json:"object"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	TotalSize  int    `json:"totalSize"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, code int, message string, object any) {
	writeJSON(w, code, response{Success: true, Message: message, Object: object})
}

func writeFailure(w http.ResponseWriter, code int, message string, errs ...string) {
	writeJSON(w, code, response{Success: false, Message: message, Errors: errs})
}

func writePaged(w http.ResponseWriter, message string, object any, page, limit, total int) {
	writeJSON(w, http.StatusOK, pagedResponse{
		Success:    true,
		Message:    message,
		Object:     object,
		PageNumber: page,
		PageSize:   limit,
		TotalSize:  total,
	})
}
