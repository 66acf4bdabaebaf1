package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rl1809/storefront/internal/adapter/metrics"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/pricing"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

type HTTPHandler struct {
	inventory  *service.InventoryService
	carts      *service.CartService
	checkout   *service.CheckoutService
	sessions   port.SessionRepository
	metrics    *metrics.Collector
	sessionTTL time.Duration
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ProductResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"item_name"`
	UnitPrice     string `json:"unit_price"`
	Color         string `json:"color,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	CurrentStock  int    `json:"current_stock"`
	StatusMessage string `json:"status_message,omitempty"`
}

type CartItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity *int  `json:"quantity"`
}

type CartResponse struct {
	pricing.Quote
	Message string `json:"message,omitempty"`
}

type CheckoutResponse struct {
	domain.CheckoutResult
}

type RestockRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

func NewHTTPHandler(
	inventory *service.InventoryService,
	carts *service.CartService,
	checkout *service.CheckoutService,
	sessions port.SessionRepository,
	collector *metrics.Collector,
	sessionTTL time.Duration,
) *HTTPHandler {
	return &HTTPHandler{
		inventory:  inventory,
		carts:      carts,
		checkout:   checkout,
		sessions:   sessions,
		metrics:    collector,
		sessionTTL: sessionTTL,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.metrics.Middleware)

	r.Get("/health", h.HealthCheck)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware(h.sessionTTL))

			r.Get("/products", h.ListProducts)
			r.Get("/products/{id}", h.ProductDetails)
			r.Get("/cart", h.ViewCart)
			r.Post("/cart/items", h.AddToCart)
			r.Put("/cart/items/{id}", h.UpdateCart)
			r.Delete("/cart", h.ClearCart)
			r.Get("/checkout", h.CheckoutForm)
			r.Post("/checkout", h.Checkout)
			r.Get("/status", h.StatusMessage)
		})

		r.Get("/admin/inventory", h.InventoryReport)
		r.Post("/admin/stock", h.AddStock)
	})

	return r
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListProducts(r.Context())
	if err != nil {
		h.internalError(w, "list products", err)
		return
	}

	out := make([]ProductResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newProductResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) ProductDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{Message: "Invalid item."})
		return
	}

	item, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, "product details", err)
		return
	}

	resp := newProductResponse(*item)
	resp.StatusMessage = h.popFlash(r)
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) ViewCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cart, err := h.sessions.LoadCart(ctx, sessionID(ctx))
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	quote, err := h.carts.View(ctx, cart)
	if err != nil {
		h.internalError(w, "view cart", err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Quote: quote, Message: h.popFlash(r)})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionID(ctx)

	var req CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, r, http.StatusBadRequest, "Invalid item or quantity.")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	cart, err := h.sessions.LoadCart(ctx, session)
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	cart, item, err := h.carts.AddItem(ctx, cart, req.ItemID, qty)
	if err != nil {
		h.setFlash(r, statusMessage(err))
		h.writeError(w, "add to cart", err)
		return
	}

	if err := h.sessions.SaveCart(ctx, session, cart); err != nil {
		h.internalError(w, "save cart", err)
		return
	}

	msg := fmt.Sprintf("Added %d × %s!", qty, item.Name)
	h.setFlash(r, msg)
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: msg})
}

func (h *HTTPHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, "Invalid item or quantity.")
		return
	}
	var req CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		h.reject(w, r, http.StatusBadRequest, "Invalid item or quantity.")
		return
	}

	cart, err := h.sessions.LoadCart(ctx, session)
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	cart, err = h.carts.SetItem(ctx, cart, id, *req.Quantity)
	if err != nil {
		h.setFlash(r, statusMessage(err))
		h.writeError(w, "update cart", err)
		return
	}

	if err := h.sessions.SaveCart(ctx, session, cart); err != nil {
		h.internalError(w, "save cart", err)
		return
	}

	quote, err := h.carts.View(ctx, cart)
	if err != nil {
		h.internalError(w, "view cart", err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Quote: quote})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.sessions.SaveCart(ctx, sessionID(ctx), h.carts.Clear()); err != nil {
		h.internalError(w, "clear cart", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: "Cart cleared."})
}

// CheckoutForm returns the confirmation summary without touching stock.
func (h *HTTPHandler) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cart, err := h.sessions.LoadCart(ctx, sessionID(ctx))
	if err != nil {
		h.internalError(w, "load cart", err)
		return
	}

	quote, err := h.checkout.Preview(ctx, cart)
	if err != nil {
		h.writeError(w, "checkout preview", err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Quote: quote})
}

// Checkout pops the cart before committing. A failed attempt puts the cart
// back so the shopper can adjust it.
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionID(ctx)

	cart, err := h.sessions.PopCart(ctx, session)
	if err != nil {
		h.internalError(w, "pop cart", err)
		return
	}

	result, err := h.checkout.Checkout(ctx, cart)
	h.metrics.ObserveCheckout(checkoutOutcome(err))
	h.setFlash(r, result.Message)

	if err != nil {
		if restorable(err) {
			// must outlive a disconnected client
			if rerr := h.sessions.SaveCart(context.WithoutCancel(ctx), session, cart); rerr != nil {
				slog.Error("restore cart failed", "session", session, "err", rerr)
			}
		}
		writeJSON(w, statusCode(err), CheckoutResponse{result})
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{result})
}

func (h *HTTPHandler) StatusMessage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: h.popFlash(r)})
}

func (h *HTTPHandler) InventoryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventory.Report(r.Context())
	if err != nil {
		h.internalError(w, "inventory report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": report})
}

func (h *HTTPHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{Message: "Enter a valid quantity."})
		return
	}

	if err := h.inventory.Restock(r.Context(), req.ItemID, req.Quantity); err != nil {
		h.writeError(w, "add stock", err)
		return
	}

	h.metrics.ObserveRestock(req.Quantity)
	writeJSON(w, http.StatusOK, StatusResponse{
		Success: true,
		Message: fmt.Sprintf("Added %d units to item %d.", req.Quantity, req.ItemID),
	})
}

func (h *HTTPHandler) popFlash(r *http.Request) string {
	msg, err := h.sessions.PopFlash(r.Context(), sessionID(r.Context()))
	if err != nil {
		slog.Error("pop flash failed", "err", err)
		return ""
	}
	return msg
}

func (h *HTTPHandler) setFlash(r *http.Request, msg string) {
	if msg == "" {
		return
	}
	if err := h.sessions.SetFlash(r.Context(), sessionID(r.Context()), msg); err != nil {
		slog.Error("set flash failed", "err", err)
	}
}

func (h *HTTPHandler) reject(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.setFlash(r, msg)
	writeJSON(w, status, StatusResponse{Message: msg})
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		h.internalError(w, op, err)
		return
	}
	writeJSON(w, status, StatusResponse{Message: statusMessage(err)})
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, StatusResponse{Message: "internal error"})
}

// restorable reports whether a failed checkout should give the cart back.
// Empty and malformed carts are dropped.
func restorable(err error) bool {
	return !errors.Is(err, service.ErrEmptyCart) &&
		!errors.Is(err, service.ErrInvalidQuantity) &&
		!errors.Is(err, service.ErrInvalidItem)
}

func statusCode(err error) int {
	var checkoutErr *service.CheckoutError
	switch {
	case errors.Is(err, service.ErrInvalidItem), errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.As(err, &checkoutErr):
		return http.StatusConflict
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStockExceeded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func statusMessage(err error) string {
	var stockErr *service.StockError
	switch {
	case errors.As(err, &stockErr):
		return fmt.Sprintf("Only %d units of %s left.", stockErr.Remaining, stockErr.Item.Name)
	case errors.Is(err, service.ErrInvalidQuantity):
		return "Quantity must be at least 1."
	case errors.Is(err, service.ErrInvalidItem):
		return "Invalid item or quantity."
	case errors.Is(err, service.ErrItemNotFound):
		return "Product not found."
	case errors.Is(err, service.ErrEmptyCart):
		return "Your cart is empty."
	}
	return "internal error"
}

func checkoutOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, service.ErrEmptyCart):
		return metrics.OutcomeEmptyCart
	case errors.Is(err, service.ErrStockExceeded):
		return metrics.OutcomeStock
	case errors.Is(err, service.ErrItemNotFound):
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}

func newProductResponse(item domain.Item) ProductResponse {
	return ProductResponse{
		ID:           item.ID,
		Name:         item.Name,
		UnitPrice:    item.UnitPrice.StringFixed(2),
		Color:        item.Color,
		Description:  item.Description,
		Image:        item.Image,
		CurrentStock: item.Available(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
