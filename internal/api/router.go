package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "oportunidades/internal/api/context"
	"oportunidades/internal/api/handlers"
	"oportunidades/internal/api/middleware"
	"oportunidades/internal/engine/policy"
	"oportunidades/internal/pkg/errors"
)

type Dependencies struct {
	HealthHandler       *handlers.HealthHandler
	AuthHandler         *handlers.AuthHandler
	OrganizationHandler *handlers.OrganizationHandler
	OpportunityHandler  *handlers.OpportunityHandler
	CategoryHandler     *handlers.CategoryHandler
	FavoriteHandler     *handlers.FavoriteHandler
	InscriptionHandler  *handlers.InscriptionHandler
	UploadHandler       *handlers.UploadHandler
	AuthMiddleware      *middleware.AuthMiddleware
	ActorMiddleware     *middleware.ActorMiddleware
	RateLimiter         *middleware.RateLimiter
	Debug               bool
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()
	router.HandleMethodNotAllowed = false
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Rota não encontrada", nil)
	})

	authMid := deps.AuthMiddleware.Handle
	actorMid := deps.ActorMiddleware.Handle
	authLimit := deps.RateLimiter.Handle(middleware.LimitAuth)
	can := func(action policy.Action) func(http.HandlerFunc) http.HandlerFunc {
		return authorize(action, deps.Debug)
	}

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/api/", wrap(deps.HealthHandler.Banner))

	// Accounts
	router.POST("/api/auth/register", chain(deps.AuthHandler.Register, authLimit))
	router.POST("/api/auth/login", chain(deps.AuthHandler.Login, authLimit))
	router.GET("/api/auth/perfil",
		chain(deps.AuthHandler.Profile, authMid, actorMid, can(policy.ReadProfile)))
	router.PUT("/api/auth/perfil",
		chain(deps.AuthHandler.UpdateProfile, authMid, actorMid, can(policy.UpdateProfile)))

	// Catalogue
	router.GET("/api/categorias", wrap(deps.CategoryHandler.List))
	router.GET("/api/filtros/areas", wrap(deps.OpportunityHandler.Areas))
	router.GET("/api/filtros/localizacoes", wrap(deps.OpportunityHandler.Locations))

	// Opportunities
	router.GET("/api/oportunidades", wrap(deps.OpportunityHandler.List))
	router.GET("/api/oportunidades/:id", wrap(deps.OpportunityHandler.Get))
	router.GET("/api/oportunidades/:id/qr", wrap(deps.OpportunityHandler.QRCode))
	router.POST("/api/oportunidades",
		chain(deps.OpportunityHandler.Create, authMid, actorMid, can(policy.CreateOpportunity)))
	router.PUT("/api/oportunidades/:id",
		chain(deps.OpportunityHandler.Update, authMid, actorMid, can(policy.UpdateOpportunity)))
	router.DELETE("/api/oportunidades/:id",
		chain(deps.OpportunityHandler.Deactivate, authMid, actorMid, can(policy.DeactivateOpportunity)))
	router.GET("/api/minhas-oportunidades",
		chain(deps.OpportunityHandler.ListMine, authMid, actorMid, can(policy.ListOwnOpportunities)))

	// Organization profile
	router.GET("/api/minha-organizacao",
		chain(deps.OrganizationHandler.GetMine, authMid, actorMid, can(policy.ReadOwnOrganization)))
	router.POST("/api/minha-organizacao",
		chain(deps.OrganizationHandler.Create, authMid, actorMid, can(policy.CreateOrganization)))

	// Favorites
	router.GET("/api/favoritos",
		chain(deps.FavoriteHandler.List, authMid, actorMid, can(policy.ManageFavorites)))
	router.POST("/api/favoritos",
		chain(deps.FavoriteHandler.Add, authMid, actorMid, can(policy.ManageFavorites)))
	router.DELETE("/api/favoritos/:oportunidade_id",
		chain(deps.FavoriteHandler.Remove, authMid, actorMid, can(policy.ManageFavorites)))
	router.GET("/api/favoritos/verificar/:oportunidade_id",
		chain(deps.FavoriteHandler.Check, authMid, actorMid, can(policy.ManageFavorites)))

	// Inscriptions
	router.POST("/api/oportunidades/:id/inscricoes",
		chain(deps.InscriptionHandler.Apply, authMid, actorMid, can(policy.ApplyToOpportunity)))
	router.GET("/api/oportunidades/:id/inscricoes",
		chain(deps.InscriptionHandler.ListForOpportunity, authMid, actorMid, can(policy.ReviewInscriptions)))
	router.GET("/api/minhas-inscricoes",
		chain(deps.InscriptionHandler.ListMine, authMid, actorMid, can(policy.ListOwnInscriptions)))
	router.PATCH("/api/inscricoes/:id",
		chain(deps.InscriptionHandler.UpdateStatus, authMid, actorMid, can(policy.ReviewInscriptions)))

	// Uploads
	router.POST("/api/uploads/imagens",
		chain(deps.UploadHandler.PresignImage, authMid, actorMid, can(policy.UploadImage)))

	return middleware.RequestLogger(middleware.Recoverer(deps.Debug)(router))
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

// authorize runs the route-level policy check. Ownership is checked again by
// the services once the resource is loaded.
func authorize(action policy.Action, debug bool) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := policy.Authorize(action, middleware.ActorFrom(r.Context()), policy.Resource{}); err != nil {
				errors.Respond(w, err, debug)
				return
			}
			next(w, r)
		}
	}
}
