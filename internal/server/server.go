package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/schoolerp/apiserver/config"
	"github.com/schoolerp/apiserver/internal/auth"
	"github.com/schoolerp/apiserver/internal/db"
	"github.com/schoolerp/apiserver/internal/google"
	"github.com/schoolerp/apiserver/internal/handlers"
	"github.com/schoolerp/apiserver/internal/records"
	"github.com/schoolerp/apiserver/internal/store"
	"github.com/schoolerp/apiserver/internal/vault"
)

const stateTTL = 10 * time.Minute

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	tokenVault, err := vault.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY: %w", err)
	}

	oauthClient, err := google.NewClient(cfg.GoogleClientSecretsFile, cfg.OAuthRedirectURL)
	if err != nil {
		return nil, fmt.Errorf("load google credentials: %w", err)
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	states := auth.NewStateStore(stateTTL)
	resolver := records.NewResolver(userRepo, tokenVault, oauthClient)

	admissions := records.NewEngine(records.Admissions, resolver)
	library := records.NewEngine(records.Library, resolver)
	hostel := records.NewEngine(records.Hostel, resolver)
	fees := records.NewEngine(records.Fees, resolver)
	appUsers := records.NewEngine(records.AppUsers, resolver)

	authHandler := handlers.NewAuthHandler(userRepo, oauthClient, tokenVault, states, jwtSecret)
	userHandler := handlers.NewUserHandler(userRepo, resolver)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	handlers.AuthRouter(router, authHandler)

	router.Group(func(r chi.Router) {
		r.Use(authHandler.RequireSession)

		handlers.UserRouter(r, userHandler)
		r.Route("/api/admissions", handlers.RecordRoutes(admissions))
		r.Route("/api/library", handlers.RecordRoutes(library))
		r.Route("/api/hostel", handlers.RecordRoutes(hostel))
		r.Route("/api/fees", handlers.RecordRoutes(fees))
		r.Route("/api/users", handlers.RecordRoutes(appUsers))
	})

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
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
