// Package httpapi serves the enhancer as a JSON HTTP API for browser clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ironsheep/image-enhancer/internal/config"
)

// Server serves the enhancement API over HTTP.
type Server struct {
	cfg     *config.Config
	log     zerolog.Logger
	version string
	router  *mux.Router
}

// New creates a Server and registers its routes.
func New(cfg *config.Config, log zerolog.Logger, version string) *Server {
	s := &Server{
		cfg:     cfg,
		log:     log,
		version: version,
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/enhance", s.handleEnhance).Methods(http.MethodPost)
	s.router.HandleFunc("/algorithms", s.handleAlgorithms).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return s
}

// Handler returns the router wrapped in the request ID, logging and CORS
// middleware. CORS sits outermost so preflight requests never reach the
// method-restricted routes.
func (s *Server) Handler() http.Handler {
	return s.cors(s.requestID(s.logRequests(s.router)))
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.Timeout,
		WriteTimeout:      s.cfg.Timeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
