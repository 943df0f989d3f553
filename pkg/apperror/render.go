package apperror

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON body of an error response.
type Envelope struct {
	Error Detail `json:"error"`
}

// Render writes err as a JSON error response and returns the status used.
func Render(w http.ResponseWriter, err error) int {
	status, detail := Resolve(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: detail})
	return status
}
