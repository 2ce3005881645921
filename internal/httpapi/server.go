package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"localpulse/internal/platform/config"
	"localpulse/internal/platform/logger"
)

// Server wraps chi and the stdlib http.Server with graceful shutdown
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer builds the server around an already-mounted handler.
// API_ADDR and API_SLOW_MS come from the service config prefix
func NewServer(cfg config.Conf, h http.Handler) *Server {
	addr := cfg.MayString("API_ADDR", ":8080")
	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is cancelled, then drains with a short grace period
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("http draining")
		return s.srv.Shutdown(shutCtx)
	}
}

// NewRouter assembles the standard middleware chain around the API routes
func NewRouter(cfg config.Conf, api *API) http.Handler {
	m := chi.NewRouter()
	m.Use(RequestID)
	m.Use(AccessLog(cfg.MayDuration("API_SLOW", 2*time.Second)))
	m.Use(RecoverJSON)
	m.Use(CORS(cfg.MayCSV("API_CORS_ORIGINS", nil)))
	api.Mount(m)
	return m
}
