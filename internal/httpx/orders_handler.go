package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/tracking"
)

type CancelOrderReq struct {
	Reason string `json:"reason"`
}

type OrdersResp struct {
	Orders []tracking.Card `json:"orders"`
}

func (h *Handlers) orderRoutes(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/cancel-reasons", h.cancelReasons)
	r.Post("/{id}/cancel", h.cancelOrder)
	r.Get("/{id}/tracking", h.trackOrder)
}

func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Tracking.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrdersResp{Orders: cards})
}

func (h *Handlers) cancelReasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"reasons": tracking.CancelReasons})
}

func (h *Handlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req CancelOrderReq
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Reason == "" {
		badRequest(w, r, "Please select a reason for cancellation")
		return
	}

	cards, err := h.Tracking.Cancel(r.Context(), auth.FromContext(r.Context()), orderID, req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrdersResp{Orders: cards})
}

func (h *Handlers) trackOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.Tracking.Track(r.Context(), auth.FromContext(r.Context()), orderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
