package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ourxmas/payment-service/internal/models"
	"github.com/ourxmas/payment-service/internal/repository"
	"github.com/ourxmas/payment-service/internal/service"
)

type createSessionPayload struct {
	PhoneNumber   *string  `json:"phone_number"`
	SessionLink   *string  `json:"session_link"`
	SessionImages []string `json:"session_images"`
	PaymentStatus *string  `json:"payment_status"`
}

type updateSessionPayload struct {
	PhoneNumber   *string   `json:"phone_number"`
	SessionLink   *string   `json:"session_link"`
	SessionImages *[]string `json:"session_images"`
	PaymentStatus *string   `json:"payment_status"`
}

func validatePhone(phone string) bool {
	return len(phone) >= 10 && len(phone) <= 20
}

// CreateUserSession creates a new user session
func (h *Handler) CreateUserSession(w http.ResponseWriter, r *http.Request) {
	var payload createSessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	var errs []fieldError
	if payload.PhoneNumber == nil || !validatePhone(*payload.PhoneNumber) {
		errs = append(errs, fieldError{Field: "phone_number", Message: "must be 10 to 20 characters"})
	}
	status := models.PaymentPending
	if payload.PaymentStatus != nil {
		status = models.PaymentStatus(*payload.PaymentStatus)
		if !status.Valid() {
			errs = append(errs, fieldError{Field: "payment_status", Message: "must be one of pending, paid, failed, refunded"})
		}
	}
	if len(errs) > 0 {
		respondValidationError(w, errs)
		return
	}

	session, err := h.svc.CreateSession(service.SessionInput{
		PhoneNumber:   *payload.PhoneNumber,
		SessionLink:   payload.SessionLink,
		SessionImages: payload.SessionImages,
		PaymentStatus: status,
	})
	if err != nil {
		h.log.Errorf("Failed to create user session: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// ListUserSessions returns sessions newest first with optional status filter
func (h *Handler) ListUserSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	status, ok := parseStatusParam(query.Get("payment_status"))
	if !ok {
		respondValidationError(w, []fieldError{{Field: "payment_status", Message: "must be one of pending, paid, failed, refunded"}})
		return
	}
	limit := parseIntParam(query.Get("limit"), 100)
	offset := parseIntParam(query.Get("offset"), 0)

	sessions, err := h.svc.ListSessions(status, limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list user sessions: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if sessions == nil {
		sessions = []models.UserSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// CountUserSessions returns the total session count with optional status filter
func (h *Handler) CountUserSessions(w http.ResponseWriter, r *http.Request) {
	status, ok := parseStatusParam(r.URL.Query().Get("payment_status"))
	if !ok {
		respondValidationError(w, []fieldError{{Field: "payment_status", Message: "must be one of pending, paid, failed, refunded"}})
		return
	}

	total, err := h.svc.CountSessions(status)
	if err != nil {
		h.log.Errorf("Failed to count user sessions: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// GetUserSessionsByPhone returns every session for a phone number
func (h *Handler) GetUserSessionsByPhone(w http.ResponseWriter, r *http.Request) {
	phone := mux.Vars(r)["phone"]
	sessions, err := h.svc.GetSessionsByPhone(phone)
	if err != nil {
		h.log.Errorf("Failed to fetch sessions for phone: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if sessions == nil {
		sessions = []models.UserSession{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

// GetUserSession returns one session by identifier
func (h *Handler) GetUserSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(mux.Vars(r)["id"])
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User session not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to get user session: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// UpdateUserSession applies a partial update to a session
func (h *Handler) UpdateUserSession(w http.ResponseWriter, r *http.Request) {
	var payload updateSessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON payload"}})
		return
	}

	var errs []fieldError
	if payload.PhoneNumber != nil && !validatePhone(*payload.PhoneNumber) {
		errs = append(errs, fieldError{Field: "phone_number", Message: "must be 10 to 20 characters"})
	}
	update := repository.SessionUpdate{
		PhoneNumber:   payload.PhoneNumber,
		SessionLink:   payload.SessionLink,
		SessionImages: payload.SessionImages,
	}
	if payload.PaymentStatus != nil {
		status := models.PaymentStatus(*payload.PaymentStatus)
		if !status.Valid() {
			errs = append(errs, fieldError{Field: "payment_status", Message: "must be one of pending, paid, failed, refunded"})
		}
		update.PaymentStatus = &status
	}
	if len(errs) > 0 {
		respondValidationError(w, errs)
		return
	}

	session, err := h.svc.UpdateSession(mux.Vars(r)["id"], update)
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User session not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to update user session: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// DeleteUserSession removes a session
func (h *Handler) DeleteUserSession(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteSession(mux.Vars(r)["id"])
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User session not found")
		return
	}
	if err != nil {
		h.log.Errorf("Failed to delete user session: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseStatusParam(value string) (models.PaymentStatus, bool) {
	if value == "" {
		return "", true
	}
	status := models.PaymentStatus(value)
	return status, status.Valid()
}

func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return fallback
}
