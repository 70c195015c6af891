package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"grievanceportal/internal/model"
	"grievanceportal/internal/repository"
)

var (
	ErrInvalidReport  = errors.New("kind must be dashboard, grievance or forecast and fileName is required")
	ErrReportNotFound = errors.New("report not found")
)

// ReportService keeps the per-user registry of exported reports
type ReportService struct {
	reportRepo repository.ReportRepo
	now        func() time.Time
}

// NewReportService creates a new report service
func NewReportService(reportRepo repository.ReportRepo) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

// Record stores metadata about an export made by userID
func (s *ReportService) Record(ctx context.Context, userID string, req *model.CreateReportRequest) (*model.ReportExport, error) {
	fileName := strings.TrimSpace(req.FileName)
	if !req.Kind.Valid() || fileName == "" {
		return nil, ErrInvalidReport
	}

	report := &model.ReportExport{
		UserID:     userID,
		Kind:       req.Kind,
		FileName:   fileName,
		TimeRange:  strings.TrimSpace(req.TimeRange),
		ExportedAt: s.now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the user's exports, optionally narrowed to one kind
func (s *ReportService) List(ctx context.Context, userID string, kind model.ReportKind) ([]*model.ReportExport, error) {
	if kind != "" && !kind.Valid() {
		return nil, ErrInvalidReport
	}
	return s.reportRepo.ListByUser(ctx, userID, kind)
}

// Delete removes one of the user's exports
func (s *ReportService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.reportRepo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReportNotFound
	}
	return nil
}
