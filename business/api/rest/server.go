package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/stxforge/pricegraph/internal/logger"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	ListenAddr     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// Server wraps the HTTP server for the price API.
type Server struct {
	server *http.Server
	log    logger.LoggerInterface
}

// NewServer builds the router, middleware stack and server.
func NewServer(cfg ServerConfig, handler *Handler, log logger.LoggerInterface) *Server {
	router := mux.NewRouter()
	router.Use(requestLogging(log))
	handler.Routes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})

	return &Server{
		server: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      corsHandler.Handler(router),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log,
	}
}

// Start listens in a background goroutine.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info(ctx, "api server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error(ctx, "api server failed", "error", err)
		}
	}()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogging(log logger.LoggerInterface) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds())
		})
	}
}
