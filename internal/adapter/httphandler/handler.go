package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
)

const degradedMsg = "service unavailable, try again later"

type ShopHandler struct {
	cart     port.CartOperator
	checkout port.CheckoutOperator
	presence port.PresenceOperator
}

func RegisterShop(
	mux *http.ServeMux,
	cart port.CartOperator,
	checkout port.CheckoutOperator,
	presence port.PresenceOperator,
) {
	h := ShopHandler{cart, checkout, presence}
	mux.HandleFunc("GET /v1/cart", h.GetCart)
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PUT /v1/cart/items", h.UpdateQuantity)
	mux.HandleFunc("DELETE /v1/cart/items/{code}", h.RemoveItem)
	mux.HandleFunc("POST /v1/checkout", h.Checkout)
	mux.HandleFunc("GET /v1/presence", h.StreamPresence)
	mux.HandleFunc("POST /v1/presence/leave", h.LeavePresence)
}

func (h ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.GetCart"
	log := slog.With("op", op)

	cid := customerID(r)
	h.touchPresence(r, cid)

	cart, err := h.cart.Cart(r.Context(), cid)
	if err != nil {
		log.Error("failed to read cart", "customerID", cid, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, log, http.StatusOK, toCartView(cart))
}

func (h ShopHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.AddItem"
	log := slog.With("op", op)

	cid := customerID(r)
	h.touchPresence(r, cid)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	cart, err := h.cart.AddItem(r.Context(), cid, req.ProductCode, req.Quantity)
	if err != nil {
		log = log.With("customerID", cid, "productCode", req.ProductCode)
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			writeJSON(w, log, http.StatusNotFound, ErrorResponse{
				Error:       "product not found",
				ProductCode: req.ProductCode,
			})
		case errors.Is(err, domain.ErrServiceUnavailable):
			log.Warn("degraded catalog", "err", err)
			writeJSON(w, log, http.StatusServiceUnavailable,
				ErrorResponse{Error: degradedMsg})
		default:
			log.Error("failed to add item", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, log, http.StatusOK, toCartView(cart))
}

func (h ShopHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.UpdateQuantity"
	log := slog.With("op", op)

	cid := customerID(r)

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	res, err := h.cart.UpdateQuantity(r.Context(), cid,
		domain.UpdateQuantityRequest{
			ProductID:   req.ProductID,
			NewQuantity: req.NewQuantity,
		})
	if err != nil {
		log = log.With("customerID", cid, "productID", req.ProductID)
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, log, http.StatusBadRequest, ErrorResponse{
				Error:  "validation failed",
				Fields: ve.Fields,
			})
		case errors.Is(err, domain.ErrItemNotFound):
			// echo the request so the view can render what missed
			writeJSON(w, log, http.StatusNotFound, req)
		default:
			log.Error("failed to update quantity", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, log, http.StatusOK, UpdateQuantityResponse{
		Item: toItemView(res.Item),
		Cart: toCartView(res.Cart),
	})
}

func (h ShopHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.RemoveItem"
	log := slog.With("op", op)

	cid := customerID(r)
	code := r.PathValue("code")

	cart, err := h.cart.RemoveItem(r.Context(), cid, code)
	if err != nil {
		log.Error("failed to remove item",
			"customerID", cid, "productCode", code, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, log, http.StatusOK, toCartView(cart))
}

func (h ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.Checkout"
	log := slog.With("op", op)

	cid := customerID(r)
	h.touchPresence(r, cid)

	var reg Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	conf, err := h.checkout.Checkout(r.Context(), cid, reg.toDomain())
	if err != nil {
		log = log.With("customerID", cid)
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, log, http.StatusBadRequest, ErrorResponse{
				Error:  "validation failed",
				Fields: ve.Fields,
			})
		case errors.Is(err, domain.ErrServiceUnavailable):
			log.Warn("degraded checkout", "err", err)
			writeJSON(w, log, http.StatusServiceUnavailable,
				ErrorResponse{Error: degradedMsg})
		default:
			log.Error("checkout failed", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, log, http.StatusCreated, toConfirmationView(conf))
}

// StreamPresence pushes the active-customer count over server-sent
// events: the current value first, then every change.
func (h ShopHandler) StreamPresence(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.StreamPresence"
	log := slog.With("op", op)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	counts, err := h.presence.Subscribe(r.Context())
	if err != nil {
		log.Error("failed to subscribe", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	writeEvent := func(n int64) {
		fmt.Fprintf(w, "data: %d\n\n", n)
		flusher.Flush()
	}

	if n, err := h.presence.Count(r.Context()); err == nil {
		writeEvent(n)
	}

	for n := range counts {
		writeEvent(n)
	}
}

func (h ShopHandler) LeavePresence(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.LeavePresence"
	log := slog.With("op", op)

	cid := customerID(r)
	if err := h.presence.Leave(r.Context(), cid); err != nil {
		log.Error("failed to leave", "customerID", cid, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// touchPresence keeps page hits counting active sessions. A failing
// counter never fails the page.
func (h ShopHandler) touchPresence(r *http.Request, cid string) {
	const op = "ShopHandler.touchPresence"

	if err := h.presence.Touch(r.Context(), cid); err != nil {
		slog.With("op", op).Warn("failed to touch presence",
			"customerID", cid, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}
