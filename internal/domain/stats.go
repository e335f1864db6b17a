package domain

// SessionStats holds global session and message counters.
type SessionStats struct {
	TotalSessions  int `json:"total_sessions"`
	ActiveSessions int `json:"active_sessions"`
	TotalMessages  int `json:"total_messages"`
}

// CategoryStat is one row of the category frequency table.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// UrgencyStat is one row of the urgency frequency table.
type UrgencyStat struct {
	Urgency string `json:"urgency"`
	Count   int    `json:"count"`
}

// DashboardStats aggregates everything the agent dashboard displays.
type DashboardStats struct {
	SessionStats  SessionStats   `json:"session_stats"`
	CategoryStats []CategoryStat `json:"category_stats"`
	UrgencyStats  []UrgencyStat  `json:"urgency_stats"`
}
