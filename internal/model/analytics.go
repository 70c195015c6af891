package model

// AnalyticsSummary aggregates filed complaints for the staff dashboard
type AnalyticsSummary struct {
	Total             int64            `json:"total"`
	ByDepartment      map[string]int64 `json:"byDepartment"`
	ByPriority        map[string]int64 `json:"byPriority"`
	ByStatus          map[string]int64 `json:"byStatus"`
	PriorityFallbacks int64            `json:"priorityFallbacks"`
}
