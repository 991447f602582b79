package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bookclub/catalog/config"
	"github.com/bookclub/catalog/internal/db"
	"github.com/bookclub/catalog/internal/handlers"
	"github.com/bookclub/catalog/internal/services"
	"github.com/bookclub/catalog/internal/session"
	"github.com/bookclub/catalog/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	redis      *redis.Client
	logger     zerolog.Logger
}

// New constructs a Server with its middleware stack and routes.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Server, error) {
	if cfg.Session.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	views, err := handlers.NewViews()
	if err != nil {
		return nil, err
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bookRepo := store.NewBookRepository(dbConn)
	commentRepo := store.NewCommentRepository(dbConn)
	userRepo := store.NewUserRepository(dbConn)

	bookService := services.NewBookService(bookRepo, commentRepo)
	commentService := services.NewCommentService(commentRepo, bookRepo, userRepo)
	userService := services.NewUserService(userRepo)

	var redisClient *redis.Client
	var revoker session.Revoker
	if cfg.Redis.Addr != "" {
		redisClient, err = session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		revoker = session.NewRedisRevoker(redisClient)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, session revocation is kept in memory")
		revoker = session.NewMemoryRevoker()
	}
	sessions := session.NewManager(cfg.Session, revoker, userService)
	limiter := handlers.NewRateLimiter(cfg.AuthRatePerMinute)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		sessions.Middleware,
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, userService, sessions, views, limiter.Middleware)
	handlers.CatalogRouter(router, bookService, commentService, views)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		redis:      redisClient,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
