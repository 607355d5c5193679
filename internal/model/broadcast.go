package model

import "time"

// BroadcastState enumerates the upstream fan-out states.
type BroadcastState string

const (
	BroadcastPending    BroadcastState = "pending"
	BroadcastProcessing BroadcastState = "processing"
	BroadcastCompleted  BroadcastState = "completed"
	BroadcastFailed     BroadcastState = "failed"
)

// Broadcast is one row of GET /admin/broadcast/history/.
type Broadcast struct {
	ID           int64          `json:"id"`
	Message      string         `json:"message"`
	Status       BroadcastState `json:"status"`
	TotalUsers   int            `json:"total_users"`
	SuccessCount int            `json:"success_count"`
	FailCount    int            `json:"fail_count"`
	TargetRoles  []string       `json:"target_roles"`
	HasImage     bool           `json:"has_image"`
	HasFile      bool           `json:"has_file"`
	CreatedAt    time.Time      `json:"created_at"`
}

// BroadcastDraft is the payload forwarded to the upstream on create or
// edit. Fan-out to Telegram happens entirely upstream.
type BroadcastDraft struct {
	Message     string   `json:"message"`
	TargetRoles []string `json:"target_roles,omitempty"`
}

// BroadcastFailure records a background send/edit that failed after the
// caller was already told it started. Delivered with the next history
// fetch so the admin still learns the true outcome.
type BroadcastFailure struct {
	Action     string    `json:"action"` // "create" or "edit"
	Message    string    `json:"message"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}
