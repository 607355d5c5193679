package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// TestService serves the teacher's my-tests screen: the test list and
// per-test lifecycle actions. All data lives upstream.
type TestService struct {
	api *upstream.Client
	log zerolog.Logger
}

// NewTestService creates a new TestService.
func NewTestService(api *upstream.Client, log zerolog.Logger) *TestService {
	return &TestService{
		api: api,
		log: log.With().Str("component", "test_service").Logger(),
	}
}

// ListMine returns the caller's tests.
func (s *TestService) ListMine(ctx context.Context, ownerID int64) ([]model.Test, error) {
	tests, err := s.api.ListUserTests(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tests == nil {
		tests = []model.Test{}
	}
	return tests, nil
}

// Get returns one full test definition.
func (s *TestService) Get(ctx context.Context, id int64) (*model.Test, error) {
	return s.api.GetTest(ctx, id)
}

// Finish deactivates a test.
func (s *TestService) Finish(ctx context.Context, id int64) error {
	return s.api.FinishTest(ctx, id)
}

// SendReport asks the upstream to deliver the results report over
// Telegram.
func (s *TestService) SendReport(ctx context.Context, id int64) error {
	return s.api.SendReport(ctx, id)
}

// SetExpiry patches only a test's expiry. A nil expiresAt clears it.
func (s *TestService) SetExpiry(ctx context.Context, id int64, expiresAt *time.Time) error {
	return s.api.PatchTestExpiry(ctx, id, model.ExpiryPatch{ExpiresAt: expiresAt})
}

// Results returns the submissions table for a test.
func (s *TestService) Results(ctx context.Context, testID int64) ([]model.TestSubmission, error) {
	rows, err := s.api.ListTestSubmissions(ctx, testID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.TestSubmission{}
	}
	return rows, nil
}

// ReportPDF streams a submission's PDF report. The caller must close
// the reader.
func (s *TestService) ReportPDF(ctx context.Context, submissionID int64) (io.ReadCloser, string, error) {
	return s.api.FetchReportPDF(ctx, submissionID)
}
