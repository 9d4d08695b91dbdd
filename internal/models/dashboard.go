package models

// DashboardSummary aggregates the headline counts rendered on role dashboards.
type DashboardSummary struct {
	Students      int `json:"students"`
	Teachers      int `json:"teachers"`
	Courses       int `json:"courses"`
	SessionsToday int `json:"sessions_today"`
	UnpaidCount   int `json:"unpaid_count"`
}
