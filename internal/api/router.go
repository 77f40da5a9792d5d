package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"resource_hub/internal/api/handler"
	"resource_hub/internal/api/middleware"
	"resource_hub/internal/app/service"
	"resource_hub/internal/common/security"
	"resource_hub/internal/metrics"
	"resource_hub/internal/platform/config"
)

func NewRouter(
	cfg *config.Config,
	tokens *security.TokenService,
	identityService *service.IdentityService,
	resourceService *service.ResourceService,
	collector *metrics.Collector,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(collector.Middleware)

	// Verifies the accesstoken header (prefix stripped), puts claims in
	// context. The Authenticator on guarded routes reports failures.
	r.Use(jwtauth.Verify(tokens.JWTAuth(), middleware.AccessTokenFinder(cfg.TokenPrefix)))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	// Identity routes (public)
	identityHandler := handler.NewIdentityHandler(identityService)
	r.Route("/admin", identityHandler.RegisterAdminRoutes)
	r.Route("/user", identityHandler.RegisterUserRoutes)

	// Resource routes (authenticated, role-guarded per operation)
	resourceHandler := handler.NewResourceHandler(resourceService, cfg.MaxUploadBytes)
	r.Route("/resource", func(res chi.Router) {
		res.Use(middleware.Authenticator(cfg.TokenPrefix, identityService))
		resourceHandler.RegisterRoutes(res)
	})

	return r
}
