package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicdesk/clinic-ops-platform/internal/attribution"
)

type contextKey string

const staffSessionKey contextKey = "staffSession"

// StaffClaims is the HMAC-signed JWT payload issued by the dashboard login.
// Subject carries the acting user's id.
type StaffClaims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"owner_id"`
	Role    string `json:"role"`
}

// StaffSession is the authenticated identity placed in the request context.
type StaffSession struct {
	OwnerID string
	User    attribution.ActingUser
}

// StaffJWT enforces a signed staff token on dashboard API endpoints and
// resolves it into a StaffSession.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "staff auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &StaffClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.OwnerID == "" || claims.Subject == "" {
				http.Error(w, "token missing identity claims", http.StatusUnauthorized)
				return
			}

			session := StaffSession{
				OwnerID: claims.OwnerID,
				User: attribution.ActingUser{
					ID:   claims.Subject,
					Role: attribution.Role(claims.Role),
				},
			}
			ctx := context.WithValue(r.Context(), staffSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession returns a context carrying the given staff session. Handlers
// under test use it in place of the full middleware.
func WithSession(ctx context.Context, session StaffSession) context.Context {
	return context.WithValue(ctx, staffSessionKey, session)
}

// SessionFromContext returns the authenticated staff session if present.
func SessionFromContext(ctx context.Context) (StaffSession, bool) {
	session, ok := ctx.Value(staffSessionKey).(StaffSession)
	return session, ok
}
