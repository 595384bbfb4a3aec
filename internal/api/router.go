package api

import (
	"log/slog"

	"github.com/axellelanca/urlalias/internal/services"
	"github.com/gin-gonic/gin"
)

// Dependencies groups what the HTTP layer needs.
type Dependencies struct {
	Aliases  *services.AliasService
	Resolver *services.Resolver
	Stats    *services.StatsService
	Auth     Authenticator
	Logger   *slog.Logger
}

// NewRouter creates a gin engine with the middleware and routes of the service.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())
	if deps.Logger != nil {
		router.Use(RequestLogger(deps.Logger))
	}
	SetupRoutes(router, deps)
	return router
}

// SetupRoutes configures all routes. Only /health and the redirect are public.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", HealthCheckHandler)

	// Redirection route: this is where users access their short URLs
	router.GET("/:code", RedirectHandler(deps.Resolver))

	authed := router.Group("/", RequireBasicAuth(deps.Auth))
	{
		authed.POST("/", CreateAliasHandler(deps.Aliases))
		authed.GET("/", ListAliasesHandler(deps.Aliases))
		authed.GET("/stats", StatsHandler(deps.Stats, deps.Aliases))
		authed.PUT("/:code/deactivate", DeactivateAliasHandler(deps.Aliases))
	}
}
