package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// AdminService proxies the admin panel's reads and writes. The gateway
// only marks what the current role may edit; the upstream makes the
// real authorization call on every write and its rejection is surfaced
// to the caller unchanged.
type AdminService struct {
	api *upstream.Client
	log zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(api *upstream.Client, log zerolog.Logger) *AdminService {
	return &AdminService{
		api: api,
		log: log.With().Str("component", "admin_service").Logger(),
	}
}

// SettingsView pairs the settings document with an editability flag
// derived from the caller's role snapshot.
type SettingsView struct {
	Settings model.Settings `json:"settings"`
	Editable bool           `json:"editable"`
}

// Settings returns the full settings document.
func (s *AdminService) Settings(ctx context.Context, callerID int64, role model.Role) (*SettingsView, error) {
	doc, err := s.api.GetSettings(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return &SettingsView{Settings: doc, Editable: role == model.RoleSuperAdmin}, nil
}

// UpdateSettings forwards a settings patch regardless of the local
// role; a non-superadmin caller gets the upstream's rejection back.
func (s *AdminService) UpdateSettings(ctx context.Context, callerID int64, doc model.Settings) (model.Settings, error) {
	return s.api.PatchSettings(ctx, callerID, doc)
}

// Stats returns the admin dashboard counters.
func (s *AdminService) Stats(ctx context.Context, callerID int64) (json.RawMessage, error) {
	return s.api.GetAdminStats(ctx, callerID)
}

// Activity returns the recent-activity feed.
func (s *AdminService) Activity(ctx context.Context, callerID int64) (json.RawMessage, error) {
	return s.api.GetAdminActivity(ctx, callerID)
}

// Users returns the admin user table.
func (s *AdminService) Users(ctx context.Context, callerID int64) ([]model.User, error) {
	return s.api.ListUsers(ctx, callerID)
}

// UpdateUser patches a user's role or balance.
func (s *AdminService) UpdateUser(ctx context.Context, callerID, telegramID int64, patch map[string]interface{}) (*model.User, error) {
	return s.api.PatchUser(ctx, callerID, telegramID, patch)
}

// Receipts returns payment receipts awaiting review.
func (s *AdminService) Receipts(ctx context.Context, callerID int64) ([]model.Receipt, error) {
	return s.api.ListReceipts(ctx, callerID)
}

// VerifyReceipt accepts or rejects a payment receipt.
func (s *AdminService) VerifyReceipt(ctx context.Context, callerID, receiptID int64, p model.VerifyReceiptPayload) error {
	return s.api.VerifyReceipt(ctx, callerID, receiptID, p)
}
