package service

import (
	"context"
	"testing"
	"time"

	"grievanceportal/internal/model"
	"grievanceportal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports(t *testing.T) {
	repo := testutil.NewMockReportRepo()
	svc := NewReportService(repo)
	ctx := context.Background()

	clock := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	dash, err := svc.Record(ctx, "u1", &model.CreateReportRequest{Kind: model.ReportDashboard, FileName: "dashboard.pdf", TimeRange: "7d"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "u1", &model.CreateReportRequest{Kind: model.ReportForecast, FileName: "forecast.pdf"})
	require.NoError(t, err)
	_, err = svc.Record(ctx, "u2", &model.CreateReportRequest{Kind: model.ReportDashboard, FileName: "other.pdf"})
	require.NoError(t, err)

	_, err = svc.Record(ctx, "u1", &model.CreateReportRequest{Kind: "pie-chart", FileName: "x.pdf"})
	assert.ErrorIs(t, err, ErrInvalidReport)
	_, err = svc.Record(ctx, "u1", &model.CreateReportRequest{Kind: model.ReportGrievance, FileName: " "})
	assert.ErrorIs(t, err, ErrInvalidReport)

	all, err := svc.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "forecast.pdf", all[0].FileName, "newest first")

	dashboards, err := svc.List(ctx, "u1", model.ReportDashboard)
	require.NoError(t, err)
	require.Len(t, dashboards, 1)
	assert.Equal(t, "7d", dashboards[0].TimeRange)

	_, err = svc.List(ctx, "u1", "bogus")
	assert.ErrorIs(t, err, ErrInvalidReport)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", dash.ID), ErrReportNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", dash.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", dash.ID), ErrReportNotFound)
}
