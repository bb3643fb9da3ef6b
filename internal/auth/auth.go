// Package auth reads the caller's identity from the bearer JWT issued by the
// storefront backend. The backend stays the authority: without a configured
// secret the claims are read unverified and every backend call re-checks the
// token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claim names the backend may use for the subject and role.
var (
	subjectClaims = []string{"sub", "user_id", "nameid", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"}
	roleClaims    = []string{"role", "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"}
	nameClaims    = []string{"name", "unique_name", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"}
)

type Identity struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Token   string `json:"-"`
}

func (i Identity) Anonymous() bool { return i.Subject == "" }

func (i Identity) IsAdmin() bool { return orders.IsAdmin(i.Role) }

// IsCustomer reports the plain storefront role.
func (i Identity) IsCustomer() bool { return strings.EqualFold(i.Role, orders.RoleUser) }

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity or the anonymous zero value.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}

type Parser struct {
	// Secret verifies HS256 signatures when set.
	Secret []byte
}

func (p Parser) Parse(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoToken
	}
	claims := jwt.MapClaims{}
	var err error
	if len(p.Secret) > 0 {
		_, err = jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return p.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	} else {
		_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := Identity{
		Subject: claimString(claims, subjectClaims),
		Role:    claimString(claims, roleClaims),
		Name:    claimString(claims, nameClaims),
		Token:   token,
	}
	if id.Subject == "" {
		return Identity{}, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}
	return id, nil
}

func claimString(c jwt.MapClaims, names []string) string {
	for _, n := range names {
		switch v := c[n].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
