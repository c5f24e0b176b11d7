package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ariefcatur/attic-lounges/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in orders.CreateInput) (orders.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (orders.Order, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	ListOrders(ctx context.Context) ([]orders.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]orders.Order, error)
	RepairOrder(ctx context.Context, id string) (orders.Order, error)
	CleanupLegacyOrders(ctx context.Context) (int64, error)
}

// IdempotencyStore remembers which order an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (string, error)
	Remember(ctx context.Context, key, orderID string) error
}

type OrdersHandler struct {
	Orders OrderService
	Auth   *Authenticator
	Idem   IdempotencyStore // optional
	Log    *slog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/api/orders", h.createOrder)
	r.Post("/api/cart/checkout", h.createOrder)
	r.With(h.Auth.Require).Get("/api/orders", h.listOwnOrders)
	r.Get("/api/orders/{userId}", h.listUserOrders)
	r.Put("/api/orders/{orderId}/fix", h.repairOrder)

	r.Get("/api/admin/orders", h.listAllOrders)
	r.Put("/api/admin/orders/{orderId}/status", h.updateStatus)
	r.Delete("/api/admin/cleanup-orders", h.cleanupOrders)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "Invalid payload")
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "Invalid payload")
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" && h.Idem != nil {
		if o, ok := h.replay(r.Context(), key); ok {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}

	o, err := h.Orders.CreateOrder(r.Context(), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	if key != "" && h.Idem != nil {
		// the order is committed; a request timeout must not drop the key
		if err := h.Idem.Remember(context.WithoutCancel(r.Context()), key, o.ID); err != nil {
			h.logger().Warn("store idempotency key", "order_id", o.ID, "err", err)
		}
	}
	writeJSON(w, http.StatusCreated, o)
}

// replay looks up an order created earlier under the same key. Redis is only
// a fast path: any lookup failure falls through to a normal create.
func (h *OrdersHandler) replay(ctx context.Context, key string) (orders.Order, bool) {
	id, err := h.Idem.Lookup(ctx, key)
	if err != nil || id == "" {
		return orders.Order{}, false
	}
	o, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		return orders.Order{}, false
	}
	return o, true
}

func (h *OrdersHandler) listOwnOrders(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	if claims == nil || claims.Subject == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid token")
		return
	}
	h.writeList(w, r, claims.Subject)
}

func (h *OrdersHandler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, chi.URLParam(r, "userId"))
}

func (h *OrdersHandler) writeList(w http.ResponseWriter, r *http.Request, userID string) {
	list, err := h.Orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.ListOrders(r.Context())
	if err != nil {
		h.logger().Error("list orders", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "Error fetching orders")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidStatus, "Invalid status")
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status)
	var conflict *orders.StatusConflictError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, o)
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:       "Cannot update status of a cancelled order",
			Code:          codeOrderCancelled,
			CurrentStatus: string(conflict.Current),
		})
	default:
		h.fail(w, err)
	}
}

func (h *OrdersHandler) repairOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.RepairOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cleanupOrders(w http.ResponseWriter, r *http.Request) {
	n, err := h.Orders.CleanupLegacyOrders(r.Context())
	if err != nil {
		h.logger().Error("cleanup orders", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "Error cleaning up orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Cleaned up %d orders with invalid user IDs", n),
		"deletedCount": n,
	})
}

func (h *OrdersHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, codeInvalidBody, "Invalid payload")
	case errors.Is(err, orders.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, "Invalid status")
	case errors.Is(err, orders.ErrOrderCancelled):
		writeError(w, http.StatusBadRequest, codeOrderCancelled, "Cannot update status of a cancelled order")
	case errors.Is(err, orders.ErrDuplicateOrder):
		writeError(w, http.StatusConflict, codeOrderExists, "Order already exists")
	case errors.Is(err, orders.ErrUnknownStatus):
		writeError(w, http.StatusConflict, codeUnknownStatus, "Order has an unknown status")
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, "Order not found")
	default:
		h.logger().Error("order request failed", "err", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func (h *OrdersHandler) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}
