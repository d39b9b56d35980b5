package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ourxmas/payment-service/internal/service"
)

// Handler exposes the HTTP endpoints
type Handler struct {
	svc     *service.Service
	log     *logrus.Logger
	version string
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service, log *logrus.Logger, version string) *Handler {
	return &Handler{svc: svc, log: log, version: version}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Detail  []fieldError `json:"detail,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Success: false, Error: msg})
}

func respondValidationError(w http.ResponseWriter, errs []fieldError) {
	respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Success: false,
		Error:   "Validation Error",
		Detail:  errs,
	})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}

// Ready reports readiness including database connectivity
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ready := true
	database := "connected"
	status := http.StatusOK
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.Errorf("Readiness probe failed: %v", err)
		ready = false
		database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"ready":     ready,
		"database":  database,
		"timestamp": time.Now().UTC(),
	})
}
