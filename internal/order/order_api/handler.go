package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/order"
	"ms-restaurant/internal/payment"
	"ms-restaurant/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Payments     *payment.Service
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, payments *payment.Service, log *logger.Logger) *Handler {
	return &Handler{
		OrderService: orderService,
		Payments:     payments,
		Logger:       log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/v1/orders", h.CreateOrder)
	r.Get("/api/v1/orders", h.ListOrders)
	r.Get("/api/v1/orders/{orderId}", h.GetOrder)
	r.Put("/api/v1/orders/{orderId}/status", h.UpdateOrderStatus)
	r.Post("/api/v1/orders/{orderId}/lines", h.AddLine)
	r.Put("/api/v1/orders/{orderId}/lines/{lineId}/cancel", h.CancelLine)
	r.Put("/api/v1/orders/{orderId}/lines/{lineId}/quantity", h.UpdateLineQuantity)
	r.Post("/api/v1/orders/{orderId}/payment", h.CreatePayment)
	r.Get("/api/v1/users/{userId}/orders", h.ListUserOrders)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	var cmd models.PlaceOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: failed to decode request body: %v", err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.OrderService.PlaceOrder(actor, cmd)
	if err != nil {
		h.writeError(w, "CreateOrder", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")

	o, err := h.OrderService.GetOrder(actor, orderID)
	if err != nil {
		h.writeError(w, "GetOrder", err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())

	orders, err := h.OrderService.ListAllOrders(actor)
	if err != nil {
		h.writeError(w, "ListOrders", err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	userID := chi.URLParam(r, "userId")

	orders, err := h.OrderService.ListByUser(actor, userID)
	if err != nil {
		h.writeError(w, "ListUserOrders", err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")

	var cmd models.UpdateOrderStatusCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.OrderService.UpdateStatus(actor, orderID, cmd)
	if err != nil {
		h.writeError(w, "UpdateOrderStatus", err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")

	var cmd models.AddLineCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.OrderService.AddLine(actor, orderID, cmd)
	if err != nil {
		h.writeError(w, "AddLine", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) CancelLine(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")
	lineID := chi.URLParam(r, "lineId")

	o, err := h.OrderService.CancelLine(actor, orderID, lineID)
	if err != nil {
		h.writeError(w, "CancelLine", err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateLineQuantity(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")
	lineID := chi.URLParam(r, "lineId")

	var cmd models.UpdateLineQuantityCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.OrderService.UpdateLineQuantity(actor, orderID, lineID, cmd)
	if err != nil {
		h.writeError(w, "UpdateLineQuantity", err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

// CreatePayment starts collection for the order's payment method: a stripe
// payment intent for CREDIT_CARD, an encrypted QR payload for QRCODE. CASH
// orders need no payment object.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor := auth.Actor(r.Context())
	orderID := chi.URLParam(r, "orderId")

	if h.Payments == nil {
		h.writeError(w, "CreatePayment", apperr.Internal("payment service unavailable", nil))
		return
	}

	o, err := h.OrderService.GetOrder(actor, orderID)
	if err != nil {
		h.writeError(w, "CreatePayment", err)
		return
	}

	result, err := h.Payments.Collect(*o)
	if err != nil {
		h.writeError(w, "CreatePayment", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("payment initiated", result))
}

// writeError maps the error kind onto the HTTP contract: Forbidden → 403,
// NotFound → 404, InvalidTransition/InvalidArgument → 422, Conflict → 409,
// anything else → 500. Authorization failures are never downgraded to 500.
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
