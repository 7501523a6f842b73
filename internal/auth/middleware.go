package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/httputil"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const identityContextKey ContextKey = "identity"

// Identity is the caller identity decoded from a verified bearer token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Middleware gates routes behind bearer token verification.
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token identity in the request context. It never touches the database.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing token", string(apperror.CodeUnauthorized), http.StatusUnauthorized)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			logger.Warn("rejected malformed authorization header")
			httputil.RespondErrorWithCode(w, "invalid or expired token", string(apperror.CodeUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			logger.Warn("rejected bearer token", "error", err)
			httputil.RespondErrorWithCode(w, "invalid or expired token", string(apperror.CodeUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid or expired token", string(apperror.CodeUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{UserID: userID, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
