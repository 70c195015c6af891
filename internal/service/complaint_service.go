package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grievanceportal/internal/cache"
	"grievanceportal/internal/metrics"
	"grievanceportal/internal/model"

	"go.uber.org/zap"
)

var (
	ErrComplaintNotFound = cache.ErrComplaintNotFound
	ErrStatusConflict    = cache.ErrStatusConflict
	ErrInvalidStatus     = errors.New("status must be one of registered, in-progress, resolved")
	ErrEmptyQuery        = errors.New("search query is required")
)

const (
	searchLimit = 20
	// RecentLimit is how many complaints a staff feed connection receives on join
	RecentLimit = 20
)

// ComplaintService files completed intake records and tracks their status
type ComplaintService struct {
	store       cache.ReportStore
	analytics   cache.AnalyticsCache
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewComplaintService creates a new complaint service
func NewComplaintService(
	store cache.ReportStore,
	analytics cache.AnalyticsCache,
	broadcaster Broadcaster,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ComplaintService {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		store:       store,
		analytics:   analytics,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      logger,
	}
}

// File stores a completion record and announces it to staff. Only the store
// write is fatal; counter and broadcast failures are logged.
func (s *ComplaintService) File(ctx context.Context, rec *model.CompletionRecord) error {
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save complaint %s: %w", rec.ID, err)
	}

	if err := s.analytics.RecordFiled(ctx, rec); err != nil {
		s.logger.Error("failed to update analytics", zap.String("complaint_id", rec.ID), zap.Error(err))
	}
	s.broadcaster.BroadcastToStaff(MsgComplaintFiled, rec)
	s.metrics.ComplaintsFiledTotal.WithLabelValues(rec.Department, string(rec.Priority)).Inc()

	s.logger.Info("complaint filed",
		zap.String("complaint_id", rec.ID),
		zap.String("department", rec.Department),
		zap.String("priority", string(rec.Priority)),
		zap.Bool("priority_fallback", rec.PriorityFallback),
	)
	return nil
}

// Get returns a complaint by id
func (s *ComplaintService) Get(ctx context.Context, id string) (*model.CompletionRecord, error) {
	rec, err := s.store.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrComplaintNotFound
	}
	return rec, nil
}

// Search returns complaint ids containing q
func (s *ComplaintService) Search(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	return s.store.Search(ctx, q, searchLimit)
}

// Recent returns the newest complaints
func (s *ComplaintService) Recent(ctx context.Context, limit int) ([]*model.CompletionRecord, error) {
	return s.store.List(ctx, limit)
}

// UpdateStatus moves a complaint to status and keeps the status counters in step
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status model.ComplaintStatus) (*model.CompletionRecord, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	prev, rec, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if err := s.analytics.MoveStatus(ctx, prev, status); err != nil {
		s.logger.Error("failed to update status counters", zap.String("complaint_id", id), zap.Error(err))
	}
	s.broadcaster.BroadcastToStaff(MsgComplaintUpdated, rec)

	s.logger.Info("complaint status changed",
		zap.String("complaint_id", id),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
	)
	return rec, nil
}
