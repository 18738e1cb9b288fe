package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	handlerTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, ping PingHandler, handlers Handlers) *Server {
	return &Server{
		logger: logger.With("component", "http-server"),
		srv: &http.Server{
			Addr:        ":" + port,
			Handler:     NewRouter(ping, handlers),
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 30 * time.Second,
		},
	}
}

// NewRouter wires every route. Event streams live outside the handler timeout.
func NewRouter(ping PingHandler, handlers Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/sessions/{id}/events", handlers.Events)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(handlerTimeout))

		r.Get("/ping", ping.PingHandler)
		r.Get("/briefing", handlers.Briefing)

		r.Post("/sessions", handlers.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetSession)
			r.Delete("/", handlers.DeleteSession)
			r.Post("/moves", handlers.MakeTurn)
			r.Post("/reset", handlers.Reset)
			r.Post("/mode", handlers.SelectMode)
			r.Delete("/mode", handlers.ChangeMode)
		})

		r.Get("/results", handlers.Results)
		r.Get("/results/stats", handlers.Stats)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return router
}

// Start serves until ctx is canceled and then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	// open event streams end with ctx instead of holding up Shutdown
	that.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		that.logger.Info("starting HTTP server", "addr", that.srv.Addr)
		if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	that.logger.Info("shutting down HTTP server")
	if err := that.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
