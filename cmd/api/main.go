package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-backend/internal/auth"
	"content-backend/internal/cache"
	"content-backend/internal/casestudies"
	"content-backend/internal/config"
	"content-backend/internal/db"
	"content-backend/internal/handlers"
	"content-backend/internal/middleware"
	"content-backend/internal/posts"
	"content-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		postsRepo posts.Repository
		casesRepo casestudies.Repository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		postsRepo = posts.NewMemoryRepository()
		casesRepo = casestudies.NewMemoryRepository()
		logger.Warn("using in-memory store, content is lost on restart")
	default:
		client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
		defer client.Disconnect(context.Background())

		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		postsRepo = posts.NewRepository(cols.Posts)
		casesRepo = casestudies.NewRepository(cols.CaseStudies)
	}

	checks := map[string]handlers.Pinger{"store": postsRepo}

	var cacheStore cache.Cache = cache.NewMemory()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL, cfg.CachePrefix)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CachePrefix)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		if cfg.RedisURL != "" {
			logger.Info("redis connected (url)")
		} else {
			logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		}
		cacheStore = redisCache
		checks["cache"] = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "content-backend",
		}
	}
	if !cfg.AdminAuthEnabled() && cfg.AdminAPIKey == "" {
		logger.Warn("admin auth disabled: set ADMIN_PASSWORD_HASH and JWT_SECRET or ADMIN_API_KEY")
	}

	val := validation.New()
	server := &handlers.Server{
		Cfg:    cfg,
		Val:    val,
		Log:    logger,
		Auth:   jwtManager,
		Checks: checks,
	}

	postsService := posts.NewService(postsRepo, val, cacheStore, cfg.CacheTTL(), cfg.Timezone, logger)
	postsHandler := posts.NewHandler(postsService, logger)

	caseStudiesService := casestudies.NewService(casesRepo, val, cacheStore, cfg.CacheTTL(), cfg.Timezone, logger)
	caseStudiesHandler := casestudies.NewHandler(caseStudiesService, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimitAdmin, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Get("/healthz", server.Health)

	r.Route("/api/v1", func(api chi.Router) {
		api.Get("/posts", postsHandler.PublicList)
		api.Get("/posts/{slug}", postsHandler.PublicGetBySlug)
		api.Get("/case-studies", caseStudiesHandler.PublicList)
		api.Get("/case-studies/{slug}", caseStudiesHandler.PublicGetBySlug)

		api.Route("/admin", func(admin chi.Router) {
			admin.With(loginLimiter.Middleware).Post("/login", server.AdminLogin)
			admin.Post("/refresh", server.AdminRefresh)
			admin.Post("/logout", server.AdminLogout)

			// chi requires middlewares before routes, so the protected set lives in a group.
			admin.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminAuth(cfg.AdminAPIKey, jwtManager))

				protected.Get("/posts", postsHandler.AdminList)
				protected.Get("/posts/candidates", postsHandler.AdminCandidates)
				protected.Post("/posts", postsHandler.AdminCreate)
				protected.Get("/posts/{id}", postsHandler.AdminGet)
				protected.Put("/posts/{id}", postsHandler.AdminUpdate)
				protected.Patch("/posts/{id}/active", postsHandler.AdminSetActive)
				protected.Delete("/posts/{id}", postsHandler.AdminDelete)

				protected.Get("/case-studies", caseStudiesHandler.AdminList)
				protected.Post("/case-studies", caseStudiesHandler.AdminCreate)
				protected.Get("/case-studies/{id}", caseStudiesHandler.AdminGet)
				protected.Put("/case-studies/{id}", caseStudiesHandler.AdminUpdate)
				protected.Patch("/case-studies/{id}/active", caseStudiesHandler.AdminSetActive)
				protected.Delete("/case-studies/{id}", caseStudiesHandler.AdminDelete)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
