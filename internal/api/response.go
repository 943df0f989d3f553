package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/shipconnect/pkg/apperror"
	"github.com/dmitrymomot/shipconnect/pkg/logger"
)

// Response is the JSON body of every API answer.
type Response struct {
	Data  any              `json:"data,omitempty"`
	Meta  map[string]any   `json:"meta,omitempty"`
	Error *apperror.Detail `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// errorRenderer logs err with its private fields and renders the public part.
type errorRenderer struct {
	log *slog.Logger
}

func (e errorRenderer) render(w http.ResponseWriter, r *http.Request, err error) {
	status, detail := apperror.Resolve(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.log.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.StatusCode(status),
		logger.Error(err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: &detail})
}
