package rest

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"grievanceportal/internal/config"
	"grievanceportal/internal/metrics"
	"grievanceportal/internal/service"
	"grievanceportal/internal/transport/rest/handler"
	"grievanceportal/internal/transport/rest/middleware"
	"grievanceportal/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	IntakeService    *service.IntakeService
	ComplaintService *service.ComplaintService
	AnalyticsService *service.AnalyticsService
	ReportService    *service.ReportService
	WSHub            *ws.Hub
	Metrics          *metrics.Metrics
	CORS             config.CORSConfig
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService, logger)
	intakeHandler := handler.NewIntakeHandler(c.IntakeService, logger)
	complaintHandler := handler.NewComplaintHandler(c.ComplaintService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService, logger)
	reportHandler := handler.NewReportHandler(c.ReportService, logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.IntakeService, c.ComplaintService, logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORS))
	if c.Metrics != nil {
		r.Use(metricsMiddleware(c.Metrics))
		r.Handle("/metrics", c.Metrics.Handler()).Methods("GET")
	}

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	v1.HandleFunc("/intake/departments", intakeHandler.Departments).Methods("GET", "OPTIONS")
	v1.HandleFunc("/intake/sessions", intakeHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/intake/sessions/{id}", intakeHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/intake/sessions/{id}/answers", intakeHandler.Answer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/intake/sessions/{id}/restart", intakeHandler.Restart).Methods("POST", "OPTIONS")

	v1.HandleFunc("/complaints", complaintHandler.Search).Methods("GET", "OPTIONS")
	v1.HandleFunc("/complaints/{id}", complaintHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket routes (feed takes its token in a query param)
	v1.HandleFunc("/ws/intake", wsHandler.IntakeWS).Methods("GET")
	v1.HandleFunc("/ws/feed", wsHandler.FeedWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"api docs not registered"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Authenticated routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/complaints/{id}/status", complaintHandler.UpdateStatus).Methods("PATCH", "OPTIONS")
	userRoutes.HandleFunc("/analytics/summary", analyticsHandler.Summary).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/reports", reportHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/reports", reportHandler.List).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/reports/{id}", reportHandler.Delete).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(cfg config.CORSConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func metricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			pattern := "unmatched"
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					pattern = tpl
				}
			}
			m.ObserveRequest(r.Method, pattern, rec.status)
		})
	}
}

// statusRecorder captures the response status. It passes Hijack through so
// WebSocket upgrades keep working.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}
