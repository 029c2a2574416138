package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/inventory"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *inventory.Service
	Logger  *logger.Logger
}

func NewHandler(service *inventory.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/v1/inventory/items", h.ListStockItems)
	r.Post("/api/v1/inventory/items", h.CreateStockItem)
	r.Get("/api/v1/inventory/items/{itemId}/logs", h.ListLogs)
	r.Post("/api/v1/inventory/restock", h.Restock)
	r.Post("/api/v1/inventory/adjust", h.Adjust)
}

func (h *Handler) ListStockItems(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	items, err := h.Service.ListStockItems(actor)
	if err != nil {
		h.writeError(w, "ListStockItems", err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateStockItem(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.CreateStockItemCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.CreateStockItem(actor, cmd)
	if err != nil {
		h.writeError(w, "CreateStockItem", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	itemID := chi.URLParam(r, "itemId")

	logs, err := h.Service.ListLogs(actor, itemID)
	if err != nil {
		h.writeError(w, "ListLogs", err)
		return
	}
	h.writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.RestockCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Restock(actor, cmd); err != nil {
		h.writeError(w, "Restock", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("stock replenished", nil))
}

func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.AdjustStockCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.Adjust(actor, cmd); err != nil {
		h.writeError(w, "Adjust", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("stock adjusted", nil))
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
