package models

// DigestRequest triggers an on-demand KPI digest. An empty To falls back to
// the configured recipient.
type DigestRequest struct {
	To string `json:"to" binding:"omitempty,numeric,min=8,max=15"`
}

// DigestReceipt acknowledges a delivered digest.
type DigestReceipt struct {
	To        string `json:"to"`
	MessageID string `json:"message_id,omitempty"`
	Partial   bool   `json:"partial"`
}
