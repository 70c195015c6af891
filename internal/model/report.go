package model

import "time"

// ReportKind groups exported reports the way the dashboard does
type ReportKind string

const (
	ReportDashboard ReportKind = "dashboard"
	ReportGrievance ReportKind = "grievance"
	ReportForecast  ReportKind = "forecast"
)

// Valid reports whether k is a known report kind
func (k ReportKind) Valid() bool {
	switch k {
	case ReportDashboard, ReportGrievance, ReportForecast:
		return true
	}
	return false
}

// ReportExport is metadata about a report a user exported
type ReportExport struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	UserID     string     `json:"userId" bson:"userId"`
	Kind       ReportKind `json:"kind" bson:"kind"`
	FileName   string     `json:"fileName" bson:"fileName"`
	TimeRange  string     `json:"timeRange" bson:"timeRange"`
	ExportedAt time.Time  `json:"exportedAt" bson:"exportedAt"`
}

// CreateReportRequest is the request body for recording an export
type CreateReportRequest struct {
	Kind      ReportKind `json:"kind"`
	FileName  string     `json:"fileName"`
	TimeRange string     `json:"timeRange"`
}
