package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/agentdouble/kpix/models"
	"github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"
)

type contextKey string

const PrincipalContextKey contextKey = "principal"

// JWTMiddleware admits requests carrying a valid access token and stores the
// caller's Principal in the request context.
func JWTMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.HandleMessageResponse(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.HandleMessageResponse(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := services.ParseToken(jwtSecret, tokenString, services.TokenTypeAccess)
			if err != nil {
				utils.HandleMessageResponse(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			principal, err := claims.Principal()
			if err != nil {
				utils.HandleMessageResponse(w, "Invalid token claims", http.StatusUnauthorized)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(models.Principal)
	return p, ok
}
