package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbp-engine/pkg/service"
)

// Server bundles the HTTP server with its services.
type Server struct {
	httpServer *http.Server
}

// NewServer wires the stores, handlers, routes and middleware stack.
func NewServer(address string, maxConcurrentJobs int) *Server {
	graphs := service.NewGraphStore()
	jobs := service.NewJobService(graphs, maxConcurrentJobs)
	handlers := NewHandlers(graphs, jobs)

	router := mux.NewRouter()
	SetupRoutes(router, handlers)
	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	return &Server{
		httpServer: &http.Server{
			Addr:         address,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	go func() {
		log.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}
