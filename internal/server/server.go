package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/flight"
	"github.com/osse101/FlightShop_Go/internal/handler"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
)

// Options configures the HTTP listener and its security middleware.
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
}

// Server is the HTTP front end of the flight service
type Server struct {
	httpServer *http.Server
	router     chi.Router
}

// NewServer wires routes and middleware. ready backs /readyz.
func NewServer(opts Options, flightService flight.Service, ready handler.HealthChecker) *Server {
	r := chi.NewRouter()

	// Outermost first
	detector := NewSuspiciousActivityDetector()
	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(RateLimitMiddleware(opts.TrustedProxies, detector))
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)

	r.Get(HealthPath, handler.HandleHealthz())
	r.Get(ReadyPath, handler.HandleReadyz(ready))
	r.Get(VersionPath, handler.HandleVersion())
	r.Handle(MetricsPath, promhttp.Handler())

	flightHandler := handler.NewFlightHandler(flightService)
	adminHandler := handler.NewAdminFlightHandler(flightService)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/players/{id}", func(r chi.Router) {
			r.Post("/join", flightHandler.HandleJoin)
			r.Post("/quit", flightHandler.HandleQuit)
		})

		r.Route("/flight/{id}", func(r chi.Router) {
			r.Get("/", flightHandler.HandleStatus)
			r.Post("/buy", flightHandler.HandleBuyTime)
			r.Post("/buy-permanent", flightHandler.HandleBuyPermanent)
			r.Get("/effects", flightHandler.HandleListItems(domain.ItemKindEffect))
			r.Post("/effects", flightHandler.HandleBuyItem(domain.ItemKindEffect))
			r.Get("/speeds", flightHandler.HandleListItems(domain.ItemKindSpeed))
			r.Post("/speeds", flightHandler.HandleBuyItem(domain.ItemKindSpeed))
			r.Post("/speeds/select", flightHandler.HandleSelectSpeed)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/flight/{id}/grant", adminHandler.HandleGrant)
			r.Post("/flight/{id}/revoke", adminHandler.HandleRevoke)
			r.Get("/diagnostics", adminHandler.HandleDiagnostics)
			r.Post("/cache/refresh", adminHandler.HandleRefreshCache)
			r.Get("/entitlements", adminHandler.HandleEntitlements)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           r,
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
		router: r,
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// requestID reuses a caller supplied X-Request-ID when it is short enough to log safely.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderRequestID)); id != "" && len(id) <= RequestIDMaxLength {
		return id
	}
	return logger.GenerateRequestID()
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isQuietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		id := requestID(r)
		w.Header().Set(HeaderRequestID, id)

		ctx := logger.WithRequestID(r.Context(), id)
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header, len(r.Header))
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start serves until Stop is called. It returns http.ErrServerClosed after a clean stop.
func (s *Server) Start() error {
	logger.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
