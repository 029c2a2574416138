package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/catalog"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/tables"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler serves the food catalog and the table listing. Reads are open to
// any authenticated caller; writes go through the elevated-only policy check
// inside the service.
type Handler struct {
	Catalog *catalog.Service
	Tables  *tables.DB
	Logger  *logger.Logger
}

func NewHandler(cat *catalog.Service, tbl *tables.DB, log *logger.Logger) *Handler {
	return &Handler{Catalog: cat, Tables: tbl, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/v1/foods", h.ListFoods)
	r.Get("/api/v1/foods/{foodId}", h.GetFood)
	r.Post("/api/v1/foods", h.CreateFood)
	r.Put("/api/v1/foods/{foodId}", h.UpdateFood)
	r.Get("/api/v1/tables", h.ListTables)
}

func (h *Handler) ListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.Catalog.ListFoods()
	if err != nil {
		h.writeError(w, "ListFoods", err)
		return
	}
	h.writeJSON(w, http.StatusOK, foods)
}

func (h *Handler) GetFood(w http.ResponseWriter, r *http.Request) {
	foodID := chi.URLParam(r, "foodId")

	f, err := h.Catalog.GetFood(foodID)
	if err != nil {
		h.writeError(w, "GetFood", err)
		return
	}
	h.writeJSON(w, http.StatusOK, f)
}

func (h *Handler) CreateFood(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.UpsertFoodCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Catalog.CreateFood(actor, cmd)
	if err != nil {
		h.writeError(w, "CreateFood", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	foodID := chi.URLParam(r, "foodId")

	var cmd models.UpsertFoodCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.Catalog.UpdateFood(actor, foodID, cmd)
	if err != nil {
		h.writeError(w, "UpdateFood", err)
		return
	}
	h.writeJSON(w, http.StatusOK, f)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Tables.ListTables()
	if err != nil {
		h.writeError(w, "ListTables", err)
		return
	}
	h.writeJSON(w, http.StatusOK, ts)
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
