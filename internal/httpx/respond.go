package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-storefront/internal/admin"
	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/dashboard"
	"github.com/ariefcatur/go-storefront/internal/tracking"
)

// errInput marks a request the BFF could not read.
var errInput = errors.New("malformed request")

// Problem is an RFC 7807 problem detail.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
	Location string `json:"location,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, p Problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	p.Instance = r.URL.Path
	p.TraceID = middleware.GetReqID(r.Context())
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblem(w, r, Problem{Status: http.StatusBadRequest, Detail: detail})
}

// statusFor maps a backend failure onto the status the BFF answers with.
func statusFor(err error) int {
	switch api.KindOf(err) {
	case api.KindTransport:
		return http.StatusBadGateway
	case api.KindNotFound:
		return http.StatusNotFound
	case api.KindValidation:
		if st := api.StatusOf(err); st == http.StatusUnauthorized || st == http.StatusForbidden {
			return st
		}
		return http.StatusBadRequest
	case api.KindConflict:
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

// writeError turns a service error into a problem response. Messages meant
// for the user are passed through as the detail; anything unexpected is
// logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		banner *checkout.BannerError
		action *admin.ActionError
		status *dashboard.StatusError
	)
	switch {
	case errors.Is(err, errInput):
		badRequest(w, r, err.Error())
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, tracking.ErrUnauthenticated):
		writeProblem(w, r, Problem{Status: http.StatusUnauthorized, Detail: "Please login to continue"})
	case errors.Is(err, tracking.ErrAdminRedirect):
		writeProblem(w, r, Problem{Status: http.StatusForbidden, Detail: err.Error(), Location: "/admin"})
	case errors.Is(err, checkout.ErrSessionNotFound):
		writeProblem(w, r, Problem{Status: http.StatusNotFound, Detail: err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeProblem(w, r, Problem{Status: http.StatusConflict, Detail: "Cart is empty", Location: "/"})
	case errors.Is(err, checkout.ErrSessionClosed), errors.Is(err, tracking.ErrNotCancellable):
		writeProblem(w, r, Problem{Status: http.StatusConflict, Detail: err.Error()})
	case errors.Is(err, admin.ErrNotConfirmed):
		writeProblem(w, r, Problem{Status: http.StatusPreconditionRequired, Detail: err.Error()})
	case errors.As(err, &banner):
		writeProblem(w, r, Problem{Status: bannerStatus(banner.Err), Detail: banner.Message})
	case errors.As(err, &action):
		writeProblem(w, r, Problem{Status: statusFor(action.Err), Detail: action.Message})
	case errors.As(err, &status):
		code := http.StatusBadRequest
		if !isInvalid(status.Err) {
			code = statusFor(status.Err)
		}
		writeProblem(w, r, Problem{Status: code, Detail: status.Message})
	case isInvalid(err):
		writeProblem(w, r, Problem{Status: http.StatusUnprocessableEntity, Detail: err.Error()})
	case api.StatusOf(err) != 0 || errors.Is(err, api.ErrTransport):
		writeProblem(w, r, Problem{Status: statusFor(err), Detail: api.MessageOr(err, "The storefront backend rejected the request.")})
	default:
		log.Error("internal server error", "path", r.URL.Path, "err", err)
		writeProblem(w, r, Problem{Status: http.StatusInternalServerError, Detail: "An unexpected error occurred. Please try again later."})
	}
}

func bannerStatus(err error) int {
	if isInvalid(err) {
		return http.StatusUnprocessableEntity
	}
	if errors.Is(err, checkout.ErrBadSignature) {
		return http.StatusBadRequest
	}
	return statusFor(err)
}

func isInvalid(err error) bool {
	for _, target := range []error{
		checkout.ErrInvalidAddress, checkout.ErrUnknownAddress, checkout.ErrNoAddress,
		checkout.ErrWrongStep, checkout.ErrInvalidMethod, checkout.ErrWrongMethod,
		checkout.ErrPaymentIncomplete, checkout.ErrNoIntent,
		tracking.ErrInvalidReason, admin.ErrInvalidProduct,
		dashboard.ErrEmptyStatus, dashboard.ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errInput, name)
	}
	return v, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %v", errInput, err)
	}
	return nil
}
