package httpx

import (
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/auth"
)

// Authenticate reads the bearer token, stores the identity on the request
// context and hands the raw token to the backend client. Requests without a
// token continue anonymously; a malformed token is rejected.
func Authenticate(p auth.Parser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := auth.BearerToken(r.Header.Get("Authorization"))
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := p.Parse(tok)
			if err != nil {
				log.Debug("rejected bearer token", "err", err)
				writeError(w, r, log, err)
				return
			}
			ctx := auth.WithIdentity(r.Context(), id)
			ctx = api.WithToken(ctx, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLogin rejects anonymous callers.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()).Anonymous() {
			writeProblem(w, r, Problem{Status: http.StatusUnauthorized, Detail: "Please login to continue"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits the Admin role only.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.FromContext(r.Context())
		switch {
		case id.Anonymous():
			writeProblem(w, r, Problem{Status: http.StatusUnauthorized, Detail: "Please login to continue"})
		case !id.IsAdmin():
			writeProblem(w, r, Problem{Status: http.StatusForbidden, Detail: "Insufficient permissions"})
		default:
			next.ServeHTTP(w, r)
		}
	})
}
