package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "oportunidades/internal/api/context"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/auth"
)

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	debug    bool
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, debug bool) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, debug: debug}
}

// Handle rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.Respond(w, errors.New(errors.ErrUnauthenticated, "Token não fornecido"), m.debug)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			errors.Respond(w, errors.New(errors.ErrInvalidToken, "Formato do cabeçalho Authorization inválido"), m.debug)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1])
		if err != nil {
			errors.Respond(w, errors.New(errors.ErrInvalidToken, "Token inválido ou expirado"), m.debug)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}
