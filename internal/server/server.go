// Package server wires the application together: database, services,
// handlers, routes, and graceful shutdown. main.go stays minimal; every
// dependency is constructed here, in one place.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/handler"
	"github.com/ydahmen/student-records/internal/mail"
	"github.com/ydahmen/student-records/internal/middleware"
	sqliteRepo "github.com/ydahmen/student-records/internal/repository/sqlite"
	"github.com/ydahmen/student-records/internal/service"
)

// Config holds everything the server needs, loaded from the environment in
// cmd/server.
type Config struct {
	Port       int
	DBPath     string
	JWTSecret  string
	CORSOrigin string

	// Seeded on first start if no admin account exists.
	AdminUsername string
	AdminPassword string

	SMTP mail.Config
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency graph:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// and seeds the default admin account when the users table has none.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}
	passwords := auth.NewPasswordService()
	mailer := mail.New(s.config.SMTP, s.logger)

	authService := service.NewAuthService(s.db, tokens, passwords, mailer, s.logger)
	studentService := service.NewStudentService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	studentHandler := handler.NewStudentHandler(studentService, s.logger)
	exportHandler := handler.NewExportHandler(studentService, s.logger)

	// One admin must always exist or nobody can manage records.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authService.EnsureDefaultAdmin(ctx, s.config.AdminUsername, s.config.AdminPassword); err != nil {
		return err
	}

	// Global middleware, in order: request ID and real IP first, panic
	// recovery, then our structured logging and CORS.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.CORSOrigin))

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	s.router.Route("/students", func(r chi.Router) {
		// Every record route requires a valid token. The reads below are
		// open to both roles — the service applies row-level isolation so
		// students only ever see their own row.
		r.Use(auth.RequireAuth(tokens))

		r.Get("/", studentHandler.HandleList)
		r.Get("/marks/subjects", studentHandler.HandleSubjects)
		r.Get("/export/csv", exportHandler.HandleExportCSV)
		r.Get("/export/pdf", exportHandler.HandleExportPDF)
		r.Get("/export/statistics", exportHandler.HandleStatistics)
		r.Get("/{id}", studentHandler.HandleGet)
		r.Get("/{id}/marks", studentHandler.HandleListMarks)

		// Writes are admin-only.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin())
			r.Post("/", studentHandler.HandleCreate)
			r.Put("/{id}", studentHandler.HandleUpdate)
			r.Delete("/{id}", studentHandler.HandleDelete)
			r.Post("/{id}/marks", studentHandler.HandleAddMark)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
