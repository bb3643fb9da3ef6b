package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ariefcatur/go-storefront/internal/admin"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/metrics"
	"github.com/ariefcatur/go-storefront/internal/tracking"
)

// Handlers groups the services behind the BFF routes.
type Handlers struct {
	Auth      auth.Parser
	Checkout  *checkout.Service
	Tracking  *tracking.Service
	Dashboard *dashboard.Service
	Products  *admin.Products
	Users     *admin.Users
	Bus       *events.Bus
	Log       *slog.Logger

	// Heartbeat is the SSE keep-alive interval.
	Heartbeat time.Duration
}

func (h *Handlers) log() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.log(), err)
}

func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(h.Auth, h.log()))

		// Streams outlive the request timeout.
		r.With(RequireLogin).Get("/events/orders", h.streamOrders)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			r.Route("/checkout", h.checkoutRoutes)
			r.Route("/orders", h.orderRoutes)
			r.Route("/admin", h.adminRoutes)
		})
	})
	return r
}
