package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/answersheet"
	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/keyboard"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// Domain Errors
var (
	ErrAttemptNotFound  = errors.New("attempt session not found or expired")
	ErrNotAttemptOwner  = errors.New("not the owner of this attempt")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrSubmitNotAllowed = errors.New("submission not allowed for this test")
)

// AttemptSession is one live answering session.
type AttemptSession struct {
	ID          string                  `json:"id"`
	StudentID   int64                   `json:"student_id"`
	StudentName string                  `json:"student_name"`
	TestID      int64                   `json:"test_id"`
	TestTitle   string                  `json:"test_title"`
	Subject     string                  `json:"subject"`
	ExpiresAt   *time.Time              `json:"expires_at,omitempty"`
	Questions   []model.WireQuestion    `json:"questions"`
	Sheet       *answersheet.Sheet      `json:"sheet"`
	Keyboard    keyboard.State          `json:"keyboard"`
	Submitted   bool                    `json:"submitted"`
	Result      *model.SubmissionResult `json:"result,omitempty"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// AttemptService orchestrates answering sessions and their submission.
type AttemptService struct {
	cfg *config.Config
	rdb *redis.Client
	api *upstream.Client
	log zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(cfg *config.Config, rdb *redis.Client, api *upstream.Client, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		cfg: cfg,
		rdb: rdb,
		api: api,
		log: log.With().Str("component", "attempt_service").Logger(),
	}
}

// LookupByCode returns the pre-login summary for an access code.
func (s *AttemptService) LookupByCode(ctx context.Context, code string) (*model.TestSummary, error) {
	return s.api.GetTestByCode(ctx, code)
}

// Start checks the student may submit, opens a session with a fresh
// sheet, remembers the display name and, when the test carries an
// expiry, schedules the auto-submit.
func (s *AttemptService) Start(ctx context.Context, studentID int64, testID int64, studentName string) (*AttemptSession, error) {
	status, err := s.api.CheckStatus(ctx, testID, studentID, studentName)
	if err != nil {
		return nil, err
	}
	if !status.CanSubmit {
		return nil, ErrSubmitNotAllowed
	}

	t, err := s.api.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	sess := &AttemptSession{
		ID:          uuid.New().String(),
		StudentID:   studentID,
		StudentName: studentName,
		TestID:      t.ID,
		TestTitle:   t.Title,
		Subject:     t.Subject,
		ExpiresAt:   t.ExpiresAt,
		Questions:   t.Questions,
		Sheet:       answersheet.New(int(t.ID), t.Questions),
	}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}

	if err := s.rdb.Set(ctx, config.CacheKey.StudentNameKey(studentID), studentName, s.cfg.AttemptTTL).Err(); err != nil {
		s.log.Warn().Err(err).Int64("student_id", studentID).Msg("remember student name")
	}

	if t.ExpiresAt != nil {
		err := s.rdb.ZAdd(ctx, config.CacheKey.ExpiryScheduleKey(), redis.Z{
			Score:  float64(t.ExpiresAt.Unix()),
			Member: sess.ID,
		}).Err()
		if err != nil {
			s.log.Error().Err(err).Str("attempt_id", sess.ID).Msg("schedule expiry")
		}
	}

	return sess, nil
}

// Get loads an attempt session, enforcing ownership.
func (s *AttemptService) Get(ctx context.Context, studentID int64, attemptID string) (*AttemptSession, error) {
	sess, err := s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if sess.StudentID != studentID {
		return nil, ErrNotAttemptOwner
	}
	return sess, nil
}

// load fetches a session without the ownership check. The expiry
// worker uses it directly.
func (s *AttemptService) load(ctx context.Context, attemptID string) (*AttemptSession, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.AttemptKey(attemptID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	var sess AttemptSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode attempt: %w", err)
	}
	return &sess, nil
}

// SetChoice records a choice answer letter.
func (s *AttemptService) SetChoice(ctx context.Context, studentID int64, attemptID string, number int, letter string) (*AttemptSession, error) {
	return s.apply(ctx, studentID, attemptID, func(sess *AttemptSession) error {
		sess.Sheet.SetChoice(number, letter)
		return nil
	})
}

// SetSlot records one part of a writing or manual answer.
func (s *AttemptService) SetSlot(ctx context.Context, studentID int64, attemptID string, number, slot int, value string) (*AttemptSession, error) {
	return s.apply(ctx, studentID, attemptID, func(sess *AttemptSession) error {
		sess.Sheet.SetSlot(number, slot, value)
		return nil
	})
}

// ─── Keyboard operations ────────────────────────────────────────────

// Focus directs the virtual keyboard at an answer slot. The slot is
// addressed by question number in the coordinate's Part field pair:
// QuestionID carries the number as text, Part the slot index.
func (s *AttemptService) Focus(ctx context.Context, studentID int64, attemptID string, coord keyboard.Coordinate, sel keyboard.Selection) (*AttemptSession, error) {
	return s.apply(ctx, studentID, attemptID, func(sess *AttemptSession) error {
		r := keyboard.RouterFromState(sess.Keyboard)
		r.Focus(coord, sel)
		sess.Keyboard = r.State()
		return nil
	})
}

// Blur clears the keyboard focus.
func (s *AttemptService) Blur(ctx context.Context, studentID int64, attemptID string) (*AttemptSession, error) {
	return s.apply(ctx, studentID, attemptID, func(sess *AttemptSession) error {
		r := keyboard.RouterFromState(sess.Keyboard)
		r.Blur()
		sess.Keyboard = r.State()
		return nil
	})
}

// KeyPress routes one keyboard key at the focused answer slot.
func (s *AttemptService) KeyPress(ctx context.Context, studentID int64, attemptID string, key KeyKind, text string) (*AttemptSession, *keyboard.Edit, error) {
	sess, err := s.Get(ctx, studentID, attemptID)
	if err != nil {
		return nil, nil, err
	}
	if sess.Submitted {
		return nil, nil, ErrAlreadySubmitted
	}

	r := keyboard.RouterFromState(sess.Keyboard)
	fields := sheetFields{sheet: sess.Sheet}

	var edit keyboard.Edit
	switch key {
	case KeyBackspace:
		edit, err = r.Backspace(fields)
	case KeyClear:
		edit, err = r.Clear(fields)
	default:
		edit, err = r.Insert(fields, text)
	}
	if errors.Is(err, keyboard.ErrNoFocus) {
		return sess, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	number, slot, ok := sheetCoord(edit.Coord)
	if ok {
		sess.Sheet.SetSlot(number, slot, edit.Text)
	}
	sess.Keyboard = r.State()
	if err := s.store(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, &edit, nil
}

// sheetFields resolves keyboard coordinates against an answer sheet.
// The question number rides in the coordinate's QuestionID as text.
type sheetFields struct {
	sheet *answersheet.Sheet
}

func (f sheetFields) FieldText(c keyboard.Coordinate) (string, bool) {
	number, slot, ok := sheetCoord(c)
	if !ok {
		return "", false
	}
	e, exists := f.sheet.Entries[number]
	if !exists || e.Kind == model.KindChoice || slot >= len(e.Slots) {
		return "", false
	}
	return e.Slots[slot], true
}

func sheetCoord(c keyboard.Coordinate) (number, slot int, ok bool) {
	var n int
	if _, err := fmt.Sscanf(c.QuestionID, "%d", &n); err != nil || n <= 0 {
		return 0, 0, false
	}
	if c.Part < 0 {
		return 0, 0, false
	}
	return n, c.Part, true
}

// ─── Submission ─────────────────────────────────────────────────────

// Unanswered lists questions still missing a complete answer. The
// client shows the confirm dialog from this; it never blocks.
func (s *AttemptService) Unanswered(ctx context.Context, studentID int64, attemptID string) ([]int, error) {
	sess, err := s.Get(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	return sess.Sheet.Unanswered(), nil
}

// Submit validates manual score entries, sends the sheet upstream and
// stores the graded result on the session. A second submit returns the
// stored result without another upstream call.
func (s *AttemptService) Submit(ctx context.Context, studentID int64, attemptID string) (*model.SubmissionResult, error) {
	sess, err := s.Get(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, sess)
}

// submit is the shared path for user-initiated and expiry-driven
// submission.
func (s *AttemptService) submit(ctx context.Context, sess *AttemptSession) (*model.SubmissionResult, error) {
	if sess.Submitted {
		if sess.Result != nil {
			return sess.Result, nil
		}
		return nil, ErrAlreadySubmitted
	}

	// Manual questions carry the entered score in their first slot.
	manualRaw := make(map[int]string)
	for n, e := range sess.Sheet.Entries {
		if e.Kind == model.KindManual && len(e.Slots) > 0 {
			manualRaw[n] = e.Slots[0]
		}
	}
	if _, err := answersheet.ValidateManualScores(sess.Questions, manualRaw); err != nil {
		return nil, err
	}

	result, err := s.api.Submit(ctx, model.SubmissionPayload{
		TestID:            sess.TestID,
		StudentTelegramID: sess.StudentID,
		StudentName:       sess.StudentName,
		Answers:           sess.Sheet.AnswersPayload(),
	})
	if err != nil {
		return nil, err
	}

	sess.Submitted = true
	sess.Result = result
	if err := s.store(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", sess.ID).Msg("store attempt after submit")
	}
	s.rdb.ZRem(ctx, config.CacheKey.ExpiryScheduleKey(), sess.ID)

	return result, nil
}

// SubmitExpired is called by the expiry worker after it has claimed
// the attempt from the schedule. Validation is skipped so a half-blank
// sheet still goes in when time runs out.
func (s *AttemptService) SubmitExpired(ctx context.Context, attemptID string) (*model.SubmissionResult, error) {
	sess, err := s.load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if sess.Submitted {
		return sess.Result, nil
	}

	result, err := s.api.Submit(ctx, model.SubmissionPayload{
		TestID:            sess.TestID,
		StudentTelegramID: sess.StudentID,
		StudentName:       sess.StudentName,
		Answers:           sess.Sheet.AnswersPayload(),
	})
	if err != nil {
		return nil, err
	}

	sess.Submitted = true
	sess.Result = result
	if err := s.store(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", sess.ID).Msg("store attempt after expiry submit")
	}
	return result, nil
}

// Status proxies the upstream can-submit check for an open session.
func (s *AttemptService) Status(ctx context.Context, studentID int64, attemptID string) (*model.AttemptStatus, error) {
	sess, err := s.Get(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	return s.api.CheckStatus(ctx, sess.TestID, sess.StudentID, sess.StudentName)
}

func (s *AttemptService) apply(ctx context.Context, studentID int64, attemptID string, op func(*AttemptSession) error) (*AttemptSession, error) {
	sess, err := s.Get(ctx, studentID, attemptID)
	if err != nil {
		return nil, err
	}
	if sess.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if err := op(sess); err != nil {
		return nil, err
	}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *AttemptService) store(ctx context.Context, sess *AttemptSession) error {
	sess.UpdatedAt = time.Now()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.AttemptKey(sess.ID), raw, s.cfg.AttemptTTL).Err(); err != nil {
		return fmt.Errorf("store attempt: %w", err)
	}
	return nil
}
