// Package server hosts one interaction over HTTP.
//
// The REST routes under /api mirror the programmatic interaction API, /ws
// streams the scene to browsers after every change, and /api/render.svg
// serves the current canvas as a standalone SVG document.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/observability"
)

// Config holds server configuration.
type Config struct {
	Addr        string
	CORSOrigins []string
	AllowAll    bool // allow all CORS origins (dev mode)

	// HighlightColor is used for highlighted blocks in rendered SVG.
	HighlightColor string
}

// Server serves a single shared interaction.
type Server struct {
	cfg        Config
	in         *interaction.Interaction
	hub        *hub
	logger     *log.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server for in. A nil logger discards output.
func New(cfg Config, in *interaction.Interaction, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		in:     in,
		hub:    newHub(logger),
		logger: logger,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if s.cfg.AllowAll || len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tree", s.handleGetTree)
		r.Put("/tree", s.handlePutTree)
		r.Get("/tree/flat", s.handleGetFlat)
		r.Get("/scene", s.handleGetScene)

		r.Post("/blocks", s.handleAddBlock)
		r.Delete("/blocks/{id}", s.handleRemoveBlock)
		r.Post("/blocks/{id}/move", s.handleMoveBlock)
		r.Post("/blocks/{id}/copy", s.handleCopyBlock)

		r.Post("/events", s.handleEvents)
		r.Post("/zoom", s.handleZoom)
		r.Post("/pan", s.handlePan)

		r.Get("/render.svg", s.handleRenderSVG)
		r.Get("/render.dot", s.handleRenderDOT)
	})

	return r
}

// requestLogger logs each request and reports it to the HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", elapsed)
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("blockflow server listening", "addr", s.cfg.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.closeAll()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
