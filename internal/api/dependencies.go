package api

import (
	"database/sql"

	"oportunidades/internal/api/handlers"
	"oportunidades/internal/api/middleware"
	"oportunidades/internal/engine/accounts"
	"oportunidades/internal/engine/favorites"
	"oportunidades/internal/engine/inscriptions"
	"oportunidades/internal/engine/opportunities"
	"oportunidades/internal/engine/organizations"
	"oportunidades/internal/platform/auth"
	"oportunidades/internal/platform/config"
	"oportunidades/internal/platform/repositories"
	"oportunidades/internal/platform/storage"
)

// NewDependencies wires repositories, services and handlers over db. images
// may be nil when uploads are disabled. Call RateLimiter.Stop on shutdown.
func NewDependencies(db *sql.DB, cfg *config.Config, images *storage.ImageStore) *Dependencies {
	debug := cfg.Server.Debug()

	accountRepo := repositories.NewAccountRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	opportunityRepo := opportunities.NewRepository(db)

	tokenSvc := auth.NewTokenService(cfg.JWT)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	orgSvc := organizations.NewService(orgRepo)
	accountSvc := accounts.NewService(accountRepo, orgSvc, tokenSvc, hasher, cfg.Auth)
	opportunitySvc := opportunities.NewService(opportunityRepo, orgSvc, categoryRepo, cfg.Opportunities, cfg.Server.PublicURL)
	favoriteSvc := favorites.NewService(favorites.NewRepository(db), opportunitySvc)
	inscriptionSvc := inscriptions.NewService(inscriptions.NewRepository(db), opportunityRepo)

	return &Dependencies{
		HealthHandler:       handlers.NewHealthHandler(db),
		AuthHandler:         handlers.NewAuthHandler(accountSvc, debug),
		OrganizationHandler: handlers.NewOrganizationHandler(orgSvc, debug),
		OpportunityHandler:  handlers.NewOpportunityHandler(opportunitySvc, debug),
		CategoryHandler:     handlers.NewCategoryHandler(categoryRepo, debug),
		FavoriteHandler:     handlers.NewFavoriteHandler(favoriteSvc, debug),
		InscriptionHandler:  handlers.NewInscriptionHandler(inscriptionSvc, debug),
		UploadHandler:       handlers.NewUploadHandler(images, debug),
		AuthMiddleware:      middleware.NewAuthMiddleware(tokenSvc, debug),
		ActorMiddleware:     middleware.NewActorMiddleware(orgRepo, debug),
		RateLimiter:         middleware.NewRateLimiter(map[string]int{middleware.LimitAuth: cfg.RateLimit.AuthPerMinute}),
		Debug:               debug,
	}
}
