package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	apiContext "oportunidades/internal/api/context"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
	"oportunidades/internal/platform/auth"
	"oportunidades/internal/platform/models"
	"oportunidades/internal/platform/repositories"
)

// ActorMiddleware turns verified claims into a policy.Actor, attaching the
// organization an organization account owns. It must run after
// AuthMiddleware.
type ActorMiddleware struct {
	orgRepo *repositories.OrganizationRepository
	debug   bool
}

func NewActorMiddleware(orgRepo *repositories.OrganizationRepository, debug bool) *ActorMiddleware {
	return &ActorMiddleware{orgRepo: orgRepo, debug: debug}
}

func (m *ActorMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
		if !ok {
			errors.Respond(w, errors.New(errors.ErrUnauthenticated, "Token não fornecido"), m.debug)
			return
		}

		actor := &policy.Actor{AccountID: claims.AccountID, Role: claims.Role, Name: claims.Name}

		if claims.Role == models.RoleOrganization {
			org, err := m.orgRepo.GetByAccountID(r.Context(), claims.AccountID)
			if err != nil {
				zerolog.Ctx(r.Context()).Error().Err(err).Int64("account_id", claims.AccountID).Msg("resolve organization")
				errors.Respond(w, err, m.debug)
				return
			}
			if org != nil {
				actor.OrganizationID = &org.ID
			}
		}

		ctx := context.WithValue(r.Context(), apiContext.Actor, actor)
		next(w, r.WithContext(ctx))
	}
}

// ActorFrom returns the actor stored by ActorMiddleware, or nil.
func ActorFrom(ctx context.Context) *policy.Actor {
	actor, _ := ctx.Value(apiContext.Actor).(*policy.Actor)
	return actor
}
