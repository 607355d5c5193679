package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/draft"
	"github.com/titulhq/titul-gateway/internal/keyboard"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/policy"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// Domain Errors
var (
	ErrDraftNotFound  = errors.New("draft session not found or expired")
	ErrNotDraftOwner  = errors.New("not the owner of this draft")
	ErrUnknownSubject = errors.New("unknown subject")
)

const (
	msgExpiryPast   = "Tugash vaqti noto'g'ri!"
	msgExpiryTooFar = "Muddat 1 haftadan oshmasligi kerak!"
)

// maxExpiryWindow bounds how far ahead a test expiry may be set.
const maxExpiryWindow = 7 * 24 * time.Hour

// ExpiryError reports a test expiry outside the allowed window. The
// message is shown to the author as-is.
type ExpiryError struct {
	Message string
}

func (e *ExpiryError) Error() string { return e.Message }

// checkExpiry rejects expiry times in the past or more than a week
// ahead, before anything reaches the upstream.
func checkExpiry(expires time.Time) error {
	now := time.Now()
	if !expires.After(now) {
		return &ExpiryError{Message: msgExpiryPast}
	}
	if expires.After(now.Add(maxExpiryWindow)) {
		return &ExpiryError{Message: msgExpiryTooFar}
	}
	return nil
}

// DraftSession is one live authoring session. It lives only in Redis;
// closing it without saving is how the original discards unsaved edits.
type DraftSession struct {
	ID             string           `json:"id"`
	OwnerID        int64            `json:"owner_id"`
	OwnerName      string           `json:"owner_name"`
	TestID         int64            `json:"test_id,omitempty"`
	Title          string           `json:"title"`
	SubmissionMode string           `json:"submission_mode"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	Collection     draft.Collection `json:"collection"`
	Keyboard       keyboard.State   `json:"keyboard"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// DraftService orchestrates authoring sessions between Redis and the
// upstream test store.
type DraftService struct {
	cfg *config.Config
	rdb *redis.Client
	api *upstream.Client
	log zerolog.Logger
}

// NewDraftService creates a new DraftService.
func NewDraftService(cfg *config.Config, rdb *redis.Client, api *upstream.Client, log zerolog.Logger) *DraftService {
	return &DraftService{
		cfg: cfg,
		rdb: rdb,
		api: api,
		log: log.With().Str("component", "draft_service").Logger(),
	}
}

// Create opens a fresh draft with the default choice block.
func (s *DraftService) Create(ctx context.Context, ownerID int64, ownerName, title, subject, subType, submissionMode string) (*DraftSession, error) {
	if !validSubject(subject) {
		return nil, ErrUnknownSubject
	}
	if !policy.HasSubTypes(subject) {
		subType = ""
	}

	sess := &DraftSession{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		OwnerName:      ownerName,
		Title:          title,
		SubmissionMode: submissionMode,
		Collection:     draft.New(subject, subType),
	}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Edit opens a draft seeded from an existing upstream test.
func (s *DraftService) Edit(ctx context.Context, ownerID int64, ownerName string, testID int64) (*DraftSession, error) {
	t, err := s.api.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	sess := &DraftSession{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		OwnerName:      ownerName,
		TestID:         t.ID,
		Title:          t.Title,
		SubmissionMode: t.SubmissionMode,
		ExpiresAt:      t.ExpiresAt,
		Collection:     draft.Hydrate(t.Subject, t.SubType, t.Questions),
	}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a draft session, enforcing ownership.
func (s *DraftService) Get(ctx context.Context, ownerID int64, draftID string) (*DraftSession, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.DraftKey(draftID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var sess DraftSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if sess.OwnerID != ownerID {
		return nil, ErrNotDraftOwner
	}
	return &sess, nil
}

// Discard drops a draft session without saving.
func (s *DraftService) Discard(ctx context.Context, ownerID int64, draftID string) error {
	if _, err := s.Get(ctx, ownerID, draftID); err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.DraftKey(draftID))
	pipe.SRem(ctx, config.CacheKey.UserDraftsKey(ownerID), draftID)
	_, err := pipe.Exec(ctx)
	return err
}

// ─── Question operations ────────────────────────────────────────────
//
// Each operation loads the session, applies a pure collection op and
// stores the result. The apply helper keeps that shape in one place.

func (s *DraftService) apply(ctx context.Context, ownerID int64, draftID string, op func(*DraftSession) error) (*DraftSession, error) {
	sess, err := s.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	if err := op(sess); err != nil {
		return nil, err
	}
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SetChoiceAnswer records a choice answer letter.
func (s *DraftService) SetChoiceAnswer(ctx context.Context, ownerID int64, draftID, questionID, letter string) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.SetChoiceAnswer(questionID, letter)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// AppendQuestion adds the next question per the subject policy.
func (s *DraftService) AppendQuestion(ctx context.Context, ownerID int64, draftID string) (*DraftSession, model.Question, error) {
	var added model.Question
	sess, err := s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, q, err := sess.Collection.AppendWriting()
		if err != nil {
			return err
		}
		sess.Collection = col
		added = q
		return nil
	})
	if err != nil {
		return nil, model.Question{}, err
	}
	return sess, added, nil
}

// AddPart appends an answer part to a writing question.
func (s *DraftService) AddPart(ctx context.Context, ownerID int64, draftID, questionID string) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.AddPart(questionID)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// RemovePart drops an answer part, keeping at least one.
func (s *DraftService) RemovePart(ctx context.Context, ownerID int64, draftID, questionID string, part int) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.RemovePart(questionID, part)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// AddAlternative appends an accepted answer variant to a part.
func (s *DraftService) AddAlternative(ctx context.Context, ownerID int64, draftID, questionID string, part int) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.AddAlternative(questionID, part)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// RemoveAlternative drops an answer variant, keeping at least one.
func (s *DraftService) RemoveAlternative(ctx context.Context, ownerID int64, draftID, questionID string, part, alt int) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.RemoveAlternative(questionID, part, alt)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// UpdateAlternative replaces an answer variant's text.
func (s *DraftService) UpdateAlternative(ctx context.Context, ownerID int64, draftID, questionID string, part, alt int, value string) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.UpdateAlternative(questionID, part, alt, value)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// SetPoints stores a question's point value from raw text input.
func (s *DraftService) SetPoints(ctx context.Context, ownerID int64, draftID, questionID, raw string) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		col, err := sess.Collection.SetPoints(questionID, raw)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	})
}

// ─── Keyboard operations ────────────────────────────────────────────

// Focus directs the virtual keyboard at a field.
func (s *DraftService) Focus(ctx context.Context, ownerID int64, draftID string, coord keyboard.Coordinate, sel keyboard.Selection) (*DraftSession, error) {
	sess, err := s.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	r := keyboard.RouterFromState(sess.Keyboard)
	r.Focus(coord, sel)
	sess.Keyboard = r.State()
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Blur clears the keyboard focus.
func (s *DraftService) Blur(ctx context.Context, ownerID int64, draftID string) (*DraftSession, error) {
	sess, err := s.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	r := keyboard.RouterFromState(sess.Keyboard)
	r.Blur()
	sess.Keyboard = r.State()
	if err := s.store(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// KeyKind selects which keyboard key was pressed.
type KeyKind string

const (
	KeyInsert    KeyKind = "insert"
	KeyBackspace KeyKind = "backspace"
	KeyClear     KeyKind = "clear"
)

// KeyPress routes one keyboard key at the focused field and commits
// the resulting edit to the collection. An unfocused or stale press
// returns the session unchanged.
func (s *DraftService) KeyPress(ctx context.Context, ownerID int64, draftID string, key KeyKind, text string) (*DraftSession, *keyboard.Edit, error) {
	sess, err := s.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, nil, err
	}

	r := keyboard.RouterFromState(sess.Keyboard)
	fields := draftFields{col: sess.Collection}

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

	if err := s.commitEdit(sess, edit); err != nil {
		return nil, nil, err
	}
	sess.Keyboard = r.State()
	if err := s.store(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, &edit, nil
}

// commitEdit writes an edit's text back into the addressed field.
func (s *DraftService) commitEdit(sess *DraftSession, edit keyboard.Edit) error {
	if edit.Coord.Points {
		col, err := sess.Collection.SetPoints(edit.Coord.QuestionID, edit.Text)
		if err != nil {
			return err
		}
		sess.Collection = col
		return nil
	}
	col, err := sess.Collection.UpdateAlternative(edit.Coord.QuestionID, edit.Coord.Part, edit.Coord.Alt, edit.Text)
	if err != nil {
		return err
	}
	sess.Collection = col
	return nil
}

// draftFields resolves keyboard coordinates against a draft collection.
type draftFields struct {
	col draft.Collection
}

func (f draftFields) FieldText(c keyboard.Coordinate) (string, bool) {
	q, ok := f.col.QuestionByID(c.QuestionID)
	if !ok {
		return "", false
	}
	if c.Points {
		return strconv.FormatFloat(q.Points, 'f', -1, 64), true
	}
	if q.Kind != model.KindWriting {
		return "", false
	}
	if c.Part < 0 || c.Part >= len(q.Parts) {
		return "", false
	}
	if c.Alt < 0 || c.Alt >= len(q.Parts[c.Part].Alternatives) {
		return "", false
	}
	return q.Parts[c.Part].Alternatives[c.Alt], true
}

// ─── Save ───────────────────────────────────────────────────────────

// Save validates and persists the draft upstream. New drafts POST,
// reopened ones PUT. The session is kept (with the new test ID) so the
// author can continue editing.
func (s *DraftService) Save(ctx context.Context, ownerID int64, draftID string) (*model.SavedTest, error) {
	sess, err := s.Get(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	if verr := sess.Collection.ValidateForSave(); verr != nil {
		return nil, verr
	}
	if sess.ExpiresAt != nil {
		if err := checkExpiry(*sess.ExpiresAt); err != nil {
			return nil, err
		}
	}

	wire, err := sess.Collection.Serialize()
	if err != nil {
		return nil, err
	}

	payload := model.TestPayload{
		CreatorID:      sess.OwnerID,
		CreatorName:    sess.OwnerName,
		Title:          sess.Title,
		Subject:        sess.Collection.Subject,
		SubmissionMode: sess.SubmissionMode,
		ExpiresAt:      sess.ExpiresAt,
		Questions:      wire,
	}
	if sess.Collection.SubType != "" {
		st := sess.Collection.SubType
		payload.SubType = &st
	}

	var saved *model.SavedTest
	if sess.TestID > 0 {
		saved, err = s.api.UpdateTest(ctx, sess.TestID, payload)
	} else {
		saved, err = s.api.CreateTest(ctx, payload)
	}
	if err != nil {
		return nil, err
	}

	sess.TestID = saved.ID
	if err := s.store(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("draft_id", sess.ID).Msg("store draft after save")
	}
	return saved, nil
}

// SetMeta updates the draft's title, submission mode or expiry.
func (s *DraftService) SetMeta(ctx context.Context, ownerID int64, draftID, title, submissionMode string, expiresAt *time.Time) (*DraftSession, error) {
	return s.apply(ctx, ownerID, draftID, func(sess *DraftSession) error {
		if title != "" {
			sess.Title = title
		}
		if submissionMode != "" {
			sess.SubmissionMode = submissionMode
		}
		if expiresAt != nil {
			if err := checkExpiry(*expiresAt); err != nil {
				return err
			}
			sess.ExpiresAt = expiresAt
		}
		return nil
	})
}

func (s *DraftService) store(ctx context.Context, sess *DraftSession) error {
	sess.UpdatedAt = time.Now()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.DraftKey(sess.ID), raw, s.cfg.DraftTTL)
	pipe.SAdd(ctx, config.CacheKey.UserDraftsKey(sess.OwnerID), sess.ID)
	pipe.Expire(ctx, config.CacheKey.UserDraftsKey(sess.OwnerID), s.cfg.DraftTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

func validSubject(subject string) bool {
	for _, s := range policy.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}
