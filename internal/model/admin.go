package model

import (
	"encoding/json"
	"time"
)

// Role labels carried in gateway session tokens. The upstream makes the
// final authorization call on every admin write; the role here only
// shapes what the client renders as editable.
type Role string

const (
	RoleUser       Role = "user"
	RoleStudent    Role = "student"
	RoleTeacher    Role = "teacher"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// User mirrors GET /users/{id}/.
type User struct {
	TelegramID    int64   `json:"telegram_id"`
	Name          string  `json:"name"`
	Role          Role    `json:"role"`
	Balance       float64 `json:"balance"`
	FreeTestsUsed int     `json:"free_tests_used"`
}

// Receipt is one payment receipt row (GET /admin/receipts/).
type Receipt struct {
	ID           int64     `json:"id"`
	UserName     string    `json:"user_name"`
	TelegramID   int64     `json:"telegram_id"`
	ReceiptImage string    `json:"receipt_image"`
	Amount       *float64  `json:"amount"`
	Status       string    `json:"status"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// VerifyReceiptPayload is the body of POST /admin/receipts/{id}/verify/.
type VerifyReceiptPayload struct {
	Action  string   `json:"action"` // "accept" or "reject"
	Amount  *float64 `json:"amount"`
	Comment string   `json:"comment"`
}

// PublicSettings is the subset of platform settings every visitor may
// read (test pricing shown on the creation screen).
type PublicSettings struct {
	PricePerQuestion float64 `json:"price_per_question"`
	PricePerTest     float64 `json:"price_per_test"`
}

// Settings is the full admin settings document. Fields beyond pricing
// are owned by the upstream; the gateway passes the document through
// untouched so new settings need no gateway release.
type Settings = json.RawMessage

// Announcement is one row of GET /announcements/.
type Announcement struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
