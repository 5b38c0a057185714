package models

// AuditEntry is one authentication audit record. When PII squelching is
// enabled the Email and Username fields are left empty and only the action
// category survives into the index.
type AuditEntry struct {
	Message  string            `json:"message"`
	Action   string            `json:"action"`
	UserID   string            `json:"user_id,omitempty"`
	Username string            `json:"username,omitempty"`
	Email    string            `json:"email,omitempty"`
	Filter   map[string]string `json:"filter,omitempty"`
}

// TimeSeriesPoint is a per-day aggregate returned by audit queries.
type TimeSeriesPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AdminAuditSearchBody filters the staff audit search. A zero Days value
// defaults to one week of daily counts.
type AdminAuditSearchBody struct {
	Actions []string `json:"actions" validate:"omitempty,dive,max=64"`
	UserID  string   `json:"user_id" validate:"omitempty,uuid"`
	Days    int      `json:"days"    validate:"omitempty,gte=1,lte=90"`
}

type AdminAuditSearchResponse struct {
	Entries     []map[string]any  `json:"entries"`
	DailyCounts []TimeSeriesPoint `json:"daily_counts"`
}
