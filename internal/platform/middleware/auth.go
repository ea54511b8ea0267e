package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "eligibility/pkg/domain"
	"eligibility/pkg/requestcontext"
)

// JWTValidator defines the interface for validating identity tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the identity asserted by a validated token
type JWTClaims struct {
	Email                string
	OrganisationID       string
	OrganisationCategory string
	EstablishmentNumber  string
	SessionID            string
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"unauthorized","error_description":%q}`, desc))
}

// RequireAuth verifies the bearer token and attaches the caller identity and
// session id to the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reject := func(reason, desc string, err error) {
				attrs := []any{"reason", reason, "path", r.URL.Path, "request_id", requestcontext.RequestID(ctx)}
				if err != nil {
					attrs = append(attrs, "error", err)
				}
				logger.WarnContext(ctx, "bulk check request rejected", attrs...)
				writeUnauthorized(w, desc)
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				reject("missing_token", "Missing or invalid Authorization header", nil)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				reject("invalid_token", "Invalid or expired token", err)
				return
			}

			sessionID, err := id.ParseSessionID(claims.SessionID)
			if err != nil {
				reject("no_session", "Invalid or expired token", err)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, id.Identity{
				Email:                claims.Email,
				OrganisationID:       id.OrganisationID(claims.OrganisationID),
				OrganisationCategory: claims.OrganisationCategory,
				EstablishmentNumber:  claims.EstablishmentNumber,
			})
			ctx = requestcontext.WithSessionID(ctx, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
