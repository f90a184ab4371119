package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes v with status. Encode errors after the header is sent
// mean the client went away and are ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
