package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

type checkoutResponse struct {
	checkout.View
	Handoff *checkout.Handoff `json:"handoff,omitempty"`
}

func (h *Handlers) checkoutRoutes(r chi.Router) {
	r.Use(RequireLogin)
	r.Post("/", h.startCheckout)
	r.Route("/{sid}", func(r chi.Router) {
		r.Get("/", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.Get(ctx, uid, sid)
		}))
		r.Post("/address/select", h.session(h.selectAddress))
		r.Put("/address/draft", h.session(h.updateDraft))
		r.Post("/address/new", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.ToggleNewAddress(ctx, uid, sid)
		}))
		r.Post("/address/save", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.SaveAddress(ctx, uid, sid)
		}))
		r.Post("/address/{aid}/edit", h.session(h.editAddress))
		r.Delete("/address/{aid}", h.session(h.deleteAddress))
		r.Post("/continue", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.Continue(ctx, uid, sid)
		}))
		r.Post("/back", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.Back(ctx, uid, sid)
		}))
		r.Post("/payment-method", h.session(h.setPaymentMethod))
		r.Post("/place", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.Place(ctx, uid, sid)
		}))
		r.Post("/pay", h.initiatePayment)
		r.Post("/payment-callback", h.session(h.completePayment))
		r.Delete("/error", h.session(func(ctx context.Context, uid, sid string, _ *http.Request) (*checkout.Session, error) {
			return h.Checkout.DismissError(ctx, uid, sid)
		}))
	})
}

type sessionAction func(ctx context.Context, userID, sid string, r *http.Request) (*checkout.Session, error)

// session adapts a checkout action to a handler answering with the view.
func (h *Handlers) session(fn sessionAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.FromContext(r.Context()).Subject
		sess, err := fn(r.Context(), uid, chi.URLParam(r, "sid"), r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, checkoutResponse{View: sess.View()})
	}
}

func (h *Handlers) startCheckout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Checkout.Start(r.Context(), auth.FromContext(r.Context()).Subject)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/checkout/"+sess.ID)
	writeJSON(w, http.StatusCreated, checkoutResponse{View: sess.View()})
}

type addressRef struct {
	AddressID int64 `json:"addressId"`
}

func (h *Handlers) selectAddress(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	var in addressRef
	if err := decode(r, &in); err != nil {
		return nil, err
	}
	return h.Checkout.SelectAddress(ctx, uid, sid, in.AddressID)
}

func (h *Handlers) updateDraft(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	var in orders.Address
	if err := decode(r, &in); err != nil {
		return nil, err
	}
	return h.Checkout.UpdateDraft(ctx, uid, sid, in)
}

func (h *Handlers) editAddress(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	aid, err := int64Param(r, "aid")
	if err != nil {
		return nil, err
	}
	return h.Checkout.EditAddress(ctx, uid, sid, aid)
}

func (h *Handlers) deleteAddress(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	aid, err := int64Param(r, "aid")
	if err != nil {
		return nil, err
	}
	return h.Checkout.DeleteAddress(ctx, uid, sid, aid)
}

func (h *Handlers) setPaymentMethod(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	var in struct {
		Method orders.PaymentMethod `json:"method"`
	}
	if err := decode(r, &in); err != nil {
		return nil, err
	}
	return h.Checkout.SetPaymentMethod(ctx, uid, sid, in.Method)
}

func (h *Handlers) completePayment(ctx context.Context, uid, sid string, r *http.Request) (*checkout.Session, error) {
	var cb checkout.Callback
	if err := decode(r, &cb); err != nil {
		return nil, err
	}
	return h.Checkout.CompletePayment(ctx, uid, sid, cb)
}

func (h *Handlers) initiatePayment(w http.ResponseWriter, r *http.Request) {
	uid := auth.FromContext(r.Context()).Subject
	sess, handoff, err := h.Checkout.InitiatePayment(r.Context(), uid, chi.URLParam(r, "sid"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{View: sess.View(), Handoff: &handoff})
}
