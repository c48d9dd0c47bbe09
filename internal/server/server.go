package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"jobcard_portal/internal/config"
	"jobcard_portal/internal/handlers"
	"jobcard_portal/internal/middlewares"
	"jobcard_portal/internal/repositories"
	"jobcard_portal/internal/routes"
	"jobcard_portal/internal/services"
)

// NewServer wires repositories, services and handlers onto one HTTP server.
// The caller owns pool and rdb and closes them after shutdown.
func NewServer(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) (*http.Server, error) {
	oauthConfig, err := config.OAuthConfig(cfg.SSO)
	if err != nil {
		return nil, err
	}

	// Dependency injection
	userRepo := repositories.NewUserRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	memberRepo := repositories.NewMemberRepository(pool)
	itemRepo := repositories.NewItemRepository(pool)
	wbsRepo := repositories.NewWbsRepository(pool)
	jobcardRepo := repositories.NewJobcardRepository(pool)
	hseRepo := repositories.NewHseRepository(pool)
	redisRepo := repositories.NewRedisRepository(rdb)

	identity := services.NewOIDCIdentityClient(oauthConfig, config.UserInfoURL(cfg.SSO))
	authService := services.NewAuthService(
		userRepo, redisRepo, identity,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.SSO.AllowedDomain,
	)
	access := services.NewAccessService(projectRepo, memberRepo)
	projectService := services.NewProjectService(projectRepo, itemRepo, memberRepo, jobcardRepo, access)
	wbsService := services.NewWbsService(itemRepo, wbsRepo, access)
	jobcardService := services.NewJobcardService(jobcardRepo, wbsRepo, hseRepo, wbsService, access)
	hseService := services.NewHseService(hseRepo, jobcardRepo, access)
	adminService := services.NewAdminService(userRepo, projectRepo, memberRepo)

	router := NewRouter(cfg.CORSOrigins, authService, routes.Handlers{
		SSO:     handlers.NewSSOHandler(authService, oauthConfig, cfg.CookieSecure),
		User:    handlers.NewUserHandler(),
		Project: handlers.NewProjectHandler(projectService),
		Wbs:     handlers.NewWbsHandler(wbsService),
		Jobcard: handlers.NewJobcardHandler(jobcardService),
		Hse:     handlers.NewHseHandler(hseService),
		Admin:   handlers.NewAdminHandler(adminService),
	})

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server, nil
}

// NewRouter builds the gin engine with logging, recovery and CORS in front
// of the API routes.
func NewRouter(corsOrigins []string, auth middlewares.Authenticator, h routes.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(middlewares.RequestLogger, gin.Recovery())

	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	routes.RegisterRoutes(router, auth, h)
	return router
}
