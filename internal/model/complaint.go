package model

import "time"

// Priority is the coarse urgency assigned to a complaint
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is used whenever the classifier cannot answer
const DefaultPriority = PriorityMedium

// ParsePriority maps a classifier label onto a Priority
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), true
	}
	return "", false
}

// ComplaintStatus tracks a filed complaint through resolution
type ComplaintStatus string

const (
	StatusRegistered ComplaintStatus = "registered"
	StatusInProgress ComplaintStatus = "in-progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// Valid reports whether s is a known status
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusRegistered, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// CompletionRecord is the result of a finished intake session
type CompletionRecord struct {
	ID                     string          `json:"id"`
	Department             string          `json:"department"`
	Language               string          `json:"language"`
	Responses              Responses       `json:"responses"`
	Priority               Priority        `json:"priority"`
	PriorityFallback       bool            `json:"priorityFallback"`
	CreatedAt              time.Time       `json:"createdAt"`
	ExpectedResponseWindow string          `json:"expectedResponseTime"`
	RespondBy              time.Time       `json:"respondBy"`
	Status                 ComplaintStatus `json:"status"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// UpdateStatusRequest is the request body for a status change
type UpdateStatusRequest struct {
	Status ComplaintStatus `json:"status"`
}
