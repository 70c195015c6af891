package app

import (
	"context"
	"net/http"

	"grievanceportal/internal/cache"
	"grievanceportal/internal/catalog"
	"grievanceportal/internal/config"
	"grievanceportal/internal/metrics"
	"grievanceportal/internal/repository"
	"grievanceportal/internal/service"
	"grievanceportal/internal/transport/rest"
	"grievanceportal/internal/transport/ws"
	"grievanceportal/internal/wizard"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// App wires storage, services and transports for one server process
type App struct {
	UserRepo       repository.UserRepo
	ReportRepo     repository.ReportRepo
	SessionCache   cache.SessionCache
	ComplaintStore cache.ReportStore
	AnalyticsCache cache.AnalyticsCache

	Hub        *ws.Hub
	Auth       *service.AuthService
	Intake     *service.IntakeService
	Complaints *service.ComplaintService
	Analytics  *service.AnalyticsService
	Reports    *service.ReportService

	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds the dependency graph. The classifier may be nil, in which case
// every complaint is filed at the fallback priority.
func New(cfg *config.Config, db *mongo.Database, rdb *redis.Client, cat *catalog.Catalog, cls wizard.Classifier, m *metrics.Metrics, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}

	a := &App{
		UserRepo:       repository.NewUserRepo(db),
		ReportRepo:     repository.NewReportRepo(db),
		SessionCache:   cache.NewSessionCache(rdb, cfg.SessionTTL),
		ComplaintStore: cache.NewComplaintStore(rdb, cfg.ComplaintTTL),
		AnalyticsCache: cache.NewAnalyticsCache(rdb),
		Hub:            ws.NewHub(logger.Named("ws")),
		cfg:            cfg,
		metrics:        m,
		logger:         logger,
	}

	a.Auth = service.NewAuthService(a.UserRepo, cfg.JWTSecret, cfg.TokenTTL, logger.Named("auth"))
	a.Complaints = service.NewComplaintService(a.ComplaintStore, a.AnalyticsCache, a.Hub, m, logger.Named("complaints"))
	a.Intake = service.NewIntakeService(cat, cls, a.SessionCache, a.Complaints, m, logger.Named("intake"))
	a.Analytics = service.NewAnalyticsService(a.AnalyticsCache)
	a.Reports = service.NewReportService(a.ReportRepo)
	return a
}

// EnsureIndexes creates the Mongo indexes the repositories rely on
func (a *App) EnsureIndexes(ctx context.Context) error {
	return a.UserRepo.EnsureIndexes(ctx)
}

// Router returns the HTTP handler serving REST, WebSocket and operational routes
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:      a.Auth,
		IntakeService:    a.Intake,
		ComplaintService: a.Complaints,
		AnalyticsService: a.Analytics,
		ReportService:    a.Reports,
		WSHub:            a.Hub,
		Metrics:          a.metrics,
		CORS:             a.cfg.CORS,
		Logger:           a.logger,
	})
}
