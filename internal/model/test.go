package model

import "time"

// Test is the full upstream test definition (GET /tests/{id}/id/).
type Test struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Subject        string         `json:"subject"`
	SubType        string         `json:"sub_type,omitempty"`
	CreatorID      int64          `json:"creator_id"`
	CreatorName    string         `json:"creator_name"`
	SubmissionMode string         `json:"submission_mode"`
	AccessCode     string         `json:"access_code"`
	IsActive       bool           `json:"is_active"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	Questions      []WireQuestion `json:"questions"`
}

// TestSummary is the reduced shape served for the code-login screen
// (GET /tests/code/{code}/).
type TestSummary struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Subject        string     `json:"subject"`
	CreatorName    string     `json:"creator_name"`
	SubmissionMode string     `json:"submission_mode"`
	QuestionCount  int        `json:"question_count"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// AttemptStatus mirrors GET /tests/{id}/check_status/{userId}/.
type AttemptStatus struct {
	CanSubmit             bool   `json:"can_submit"`
	SubmissionMode        string `json:"submission_mode"`
	ExistingAttemptsCount int    `json:"existing_attempts_count"`
}

// TestPayload is the authoring payload for POST /tests/ and PUT /tests/{id}/.
type TestPayload struct {
	CreatorID      int64          `json:"creator_id"`
	CreatorName    string         `json:"creator_name"`
	Title          string         `json:"title"`
	Subject        string         `json:"subject"`
	SubType        *string        `json:"sub_type"`
	SubmissionMode string         `json:"submission_mode"`
	ExpiresAt      *time.Time     `json:"expires_at"`
	Questions      []WireQuestion `json:"questions"`
}

// SavedTest is the upstream acknowledgement of a create/update.
type SavedTest struct {
	ID         int64  `json:"id"`
	AccessCode string `json:"access_code"`
}

// ExpiryPatch updates only a test's expiry (PATCH /tests/{id}/).
type ExpiryPatch struct {
	ExpiresAt *time.Time `json:"expires_at"`
}
