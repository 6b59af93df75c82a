package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/seekershq/seekers-backend/internal/services"
)

type contextKey string

const claimsContextKey contextKey = "session_claims"

// Authenticator guards routes behind a valid session token.
type Authenticator struct {
	tokens *services.TokenService
}

func NewAuthenticator(tokens *services.TokenService) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Middleware verifies the bearer token and stores its claims in the request
// context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.tokens.Verify(ExtractToken(r))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Authentication required. Please login."}`))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken pulls the session token from the Authorization header, with a
// query-parameter fallback for browser WebSocket clients that cannot set
// headers.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// ClaimsFromContext returns the verified session claims, or nil outside an
// authenticated route.
func ClaimsFromContext(ctx context.Context) *services.SessionClaims {
	claims, _ := ctx.Value(claimsContextKey).(*services.SessionClaims)
	return claims
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
