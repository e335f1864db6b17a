package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smartsupport/backend/internal/api/handler"
	customMiddleware "github.com/smartsupport/backend/internal/api/middleware"
	"github.com/smartsupport/backend/internal/config"
	"github.com/smartsupport/backend/internal/llm"
	"github.com/smartsupport/backend/internal/repository/postgres"
	"github.com/smartsupport/backend/internal/repository/redis"
	"github.com/smartsupport/backend/internal/security"
	"github.com/smartsupport/backend/internal/service"
)

// routerDeps bundles the wired services the routes are built from.
// db and rateLimiter are optional; their endpoints and middleware are
// skipped when the backend is absent.
type routerDeps struct {
	cfg         *config.Config
	db          *postgres.DB
	jwtManager  *security.JWTManager
	auth        *service.AuthService
	sessions    *service.SessionManager
	stats       *service.StatsService
	rateLimiter *redis.RateLimiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	userRepo := postgres.NewUserRepository(db.Pool)
	sessionRepo := postgres.NewSessionRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)
	classificationRepo := postgres.NewClassificationRepository(db.Pool)

	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	statsCache := redis.NewStatsCache(redisClient)

	// Completion gateway client
	gateway := llm.NewClient(cfg.LLM)

	return newRouter(routerDeps{
		cfg:         cfg,
		db:          db,
		jwtManager:  jwtManager,
		auth:        service.NewAuthService(userRepo, jwtManager),
		sessions:    service.NewSessionManager(sessionRepo, messageRepo, classificationRepo, gateway),
		stats:       service.NewStatsService(sessionRepo, messageRepo, classificationRepo, statsCache),
		rateLimiter: rateLimiter,
	})
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(d.auth)
	sessionHandler := handler.NewSessionHandler(d.sessions)
	messageHandler := handler.NewMessageHandler(d.sessions)
	dashboardHandler := handler.NewDashboardHandler(d.sessions, d.stats)

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(d.jwtManager)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		if d.db != nil {
			r.Get("/ready", handler.ReadyCheck(d.db))
		}

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if d.rateLimiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(d.rateLimiter).Limit)
			}

			r.Get("/auth/me", authHandler.Me)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Post("/end", sessionHandler.End)
					r.Delete("/", sessionHandler.Delete)
					r.Get("/stats", sessionHandler.Stats)
					r.Get("/transcript", sessionHandler.Transcript)

					r.Get("/messages", messageHandler.List)
					r.Post("/messages", messageHandler.Create)
				})
			})

			// Agent dashboard
			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.AgentOnly)

				r.Get("/classifications", dashboardHandler.ListClassifications)
				r.Post("/classifications/{sessionID}", dashboardHandler.Classify)
				r.Get("/stats", dashboardHandler.Stats)
			})
		})
	})

	return r
}
