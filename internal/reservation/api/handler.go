package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/reservation"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *reservation.Service
	Logger  *logger.Logger
}

func NewHandler(service *reservation.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/v1/reservations", h.CreateReservation)
	r.Get("/api/v1/reservations/{reservationId}", h.GetReservation)
	r.Put("/api/v1/reservations/{reservationId}/confirm", h.ConfirmReservation)
	r.Put("/api/v1/reservations/{reservationId}/cancel", h.CancelReservation)
	r.Get("/api/v1/users/{userId}/reservations", h.ListUserReservations)
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.CreateReservationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Service.Create(actor, cmd)
	if err != nil {
		h.writeError(w, "CreateReservation", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	reservationID := chi.URLParam(r, "reservationId")

	res, err := h.Service.Get(actor, reservationID)
	if err != nil {
		h.writeError(w, "GetReservation", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	reservationID := chi.URLParam(r, "reservationId")

	res, err := h.Service.Confirm(actor, reservationID)
	if err != nil {
		h.writeError(w, "ConfirmReservation", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	reservationID := chi.URLParam(r, "reservationId")

	res, err := h.Service.Cancel(actor, reservationID)
	if err != nil {
		h.writeError(w, "CancelReservation", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ListUserReservations(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	userID := chi.URLParam(r, "userId")

	list, err := h.Service.ListByUser(actor, userID)
	if err != nil {
		h.writeError(w, "ListUserReservations", err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Warn("API", fmt.Sprintf("%s: %d %v", op, status, err))
	}
	h.writeJSON(w, status, utils.ErrorResponse(op+" failed", apperr.KindOf(err)))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
