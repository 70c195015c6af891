package service

import (
	"context"

	"grievanceportal/internal/cache"
	"grievanceportal/internal/model"
)

// AnalyticsService serves the staff dashboard counters
type AnalyticsService struct {
	analytics cache.AnalyticsCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analytics cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// Summary returns complaint counts by department, priority and status
func (s *AnalyticsService) Summary(ctx context.Context) (*model.AnalyticsSummary, error) {
	return s.analytics.Summary(ctx)
}
