// Package draft holds the authoring-side question collection: the
// editable set of questions for one test draft. Every operation is
// pure: it returns a new collection sharing untouched questions with
// the old one, so callers can persist or diff snapshots freely.
package draft

import (
	"errors"
	"strconv"
	"strings"

	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/policy"
)

var (
	// ErrQuestionNotFound means the addressed question ID is not in the
	// collection (it may have existed in an older snapshot).
	ErrQuestionNotFound = errors.New("question not found in draft")
	// ErrKindMismatch means the operation does not apply to the
	// addressed question's variant.
	ErrKindMismatch = errors.New("operation does not apply to this question type")
)

// CeilingError rejects an append past the subject's question ceiling.
type CeilingError struct {
	Ceiling int
}

func (e *CeilingError) Error() string {
	return "Maksimal savollar soniga yetdingiz: " + strconv.Itoa(e.Ceiling)
}

// ValidationError names the first question that fails save validation.
type ValidationError struct {
	Number int
	Reason ValidationReason
}

type ValidationReason int

const (
	ReasonChoiceUnset ValidationReason = iota
	ReasonWritingEmpty
	ReasonBadPoints
)

func (e *ValidationError) Error() string {
	n := strconv.Itoa(e.Number)
	switch e.Reason {
	case ReasonChoiceUnset:
		return n + "-savol javobi belgilanmagan!"
	case ReasonWritingEmpty:
		return n + "-savolga kalit kiritilmagan!"
	default:
		return n + "-savol bali noto'g'ri!"
	}
}

// Collection is one test draft's ordered question set.
type Collection struct {
	Subject   string           `json:"subject"`
	SubType   string           `json:"sub_type,omitempty"`
	Questions []model.Question `json:"questions"`
}

// New synthesizes a fresh draft: the fixed block of choice placeholders
// numbered 1..35.
func New(subject, subType string) Collection {
	qs := make([]model.Question, policy.ChoiceBlockSize)
	for i := range qs {
		qs[i] = model.NewChoiceQuestion(i + 1)
	}
	return Collection{Subject: subject, SubType: subType, Questions: qs}
}

// Hydrate rebuilds a draft from a fetched test definition. Writing
// answer keys are parsed back into part/alternative arrays; a short
// collection is padded up to the choice block size.
func Hydrate(subject, subType string, wire []model.WireQuestion) Collection {
	qs := make([]model.Question, 0, len(wire))
	for _, w := range wire {
		q := model.NewChoiceQuestion(w.QuestionNumber)
		q.Kind = w.QuestionType
		q.Points = w.Points
		switch w.QuestionType {
		case model.KindChoice:
			if w.CorrectAnswer != nil {
				q.Choice = *w.CorrectAnswer
			}
		case model.KindWriting:
			if w.CorrectAnswer != nil {
				q.Parts = model.DecodeWritingKey(*w.CorrectAnswer)
			}
		case model.KindManual:
			// Manual questions carry no answer key.
		}
		qs = append(qs, q)
	}
	for len(qs) < policy.ChoiceBlockSize {
		qs = append(qs, model.NewChoiceQuestion(len(qs)+1))
	}
	return Collection{Subject: subject, SubType: subType, Questions: qs}
}

// QuestionByID returns the question with the given stable ID.
func (c Collection) QuestionByID(id string) (model.Question, bool) {
	if i, ok := c.locate(id); ok {
		return c.Questions[i], true
	}
	return model.Question{}, false
}

// ChoiceLetters returns the answer alphabet for a choice position.
// Positions 33–35 use the extended A–F sheet row.
func ChoiceLetters(number int) []string {
	if number >= 33 && number <= 35 {
		return []string{"A", "B", "C", "D", "E", "F"}
	}
	return []string{"A", "B", "C", "D"}
}

// SetChoiceAnswer replaces the answer letter of a choice question.
// The letter itself is not validated here; save-time validation owns that.
func (c Collection) SetChoiceAnswer(id, letter string) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	if c.Questions[i].Kind != model.KindChoice {
		return c, ErrKindMismatch
	}
	out := c.clone()
	out.Questions[i].Choice = letter
	return out, nil
}

// AppendWriting adds the next question after the current tail, with
// variant and points taken from the subject policy table. Appending
// past the subject ceiling returns a CeilingError and leaves the
// collection unchanged.
func (c Collection) AppendWriting() (Collection, model.Question, error) {
	next := len(c.Questions) + 1
	ceiling := policy.Ceiling(c.Subject, c.SubType)
	if next > ceiling {
		return c, model.Question{}, &CeilingError{Ceiling: ceiling}
	}

	kind, points := policy.AppendedSlot(c.Subject, c.SubType, next)
	q := model.NewChoiceQuestion(next)
	q.Kind = kind
	q.Points = points

	out := c
	out.Questions = append(append([]model.Question{}, c.Questions...), q)
	return out, q, nil
}

// AddPart appends an empty part to a writing question.
func (c Collection) AddPart(id string) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	if c.Questions[i].Kind != model.KindWriting {
		return c, ErrKindMismatch
	}
	out := c.clone()
	out.Questions[i].Parts = append(clonePartSlice(c.Questions[i].Parts), model.NewPart())
	return out, nil
}

// RemovePart drops a part. Removing the last remaining part, or
// addressing a part that no longer exists, is a silent no-op.
func (c Collection) RemovePart(id string, part int) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	parts := c.Questions[i].Parts
	if len(parts) <= 1 || part < 0 || part >= len(parts) {
		return c, nil
	}
	out := c.clone()
	kept := make([]model.Part, 0, len(parts)-1)
	for j, p := range parts {
		if j != part {
			kept = append(kept, p)
		}
	}
	out.Questions[i].Parts = kept
	return out, nil
}

// AddAlternative appends an empty alternative to a part.
func (c Collection) AddAlternative(id string, part int) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	parts := c.Questions[i].Parts
	if part < 0 || part >= len(parts) {
		return c, nil
	}
	out := c.clone()
	newParts := clonePartSlice(parts)
	newParts[part].Alternatives = append(append([]string{}, parts[part].Alternatives...), "")
	out.Questions[i].Parts = newParts
	return out, nil
}

// RemoveAlternative drops one alternative, never going below one per part.
func (c Collection) RemoveAlternative(id string, part, alt int) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	parts := c.Questions[i].Parts
	if part < 0 || part >= len(parts) {
		return c, nil
	}
	alts := parts[part].Alternatives
	if len(alts) <= 1 || alt < 0 || alt >= len(alts) {
		return c, nil
	}
	out := c.clone()
	newParts := clonePartSlice(parts)
	kept := make([]string, 0, len(alts)-1)
	for j, a := range alts {
		if j != alt {
			kept = append(kept, a)
		}
	}
	newParts[part].Alternatives = kept
	out.Questions[i].Parts = newParts
	return out, nil
}

// UpdateAlternative replaces one alternative's text wholesale.
func (c Collection) UpdateAlternative(id string, part, alt int, value string) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	parts := c.Questions[i].Parts
	if part < 0 || part >= len(parts) || alt < 0 || alt >= len(parts[part].Alternatives) {
		return c, nil
	}
	out := c.clone()
	newParts := clonePartSlice(parts)
	newAlts := append([]string{}, parts[part].Alternatives...)
	newAlts[alt] = value
	newParts[part].Alternatives = newAlts
	out.Questions[i].Parts = newParts
	return out, nil
}

// SetPoints parses and stores a question's point value. An unparseable
// entry coerces to 0 silently; save-time validation surfaces it.
func (c Collection) SetPoints(id, raw string) (Collection, error) {
	i, ok := c.locate(id)
	if !ok {
		return c, ErrQuestionNotFound
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		v = 0
	}
	out := c.clone()
	out.Questions[i].Points = v
	return out, nil
}

// ValidateForSave checks every question and returns the first
// violation: a choice question inside the fixed block with no answer,
// a writing question with no non-blank alternative anywhere, or a
// non-finite/negative point value.
func (c Collection) ValidateForSave() *ValidationError {
	for _, q := range c.Questions {
		switch q.Kind {
		case model.KindChoice:
			if q.Choice == "" && q.Number <= policy.ChoiceBlockSize {
				return &ValidationError{Number: q.Number, Reason: ReasonChoiceUnset}
			}
		case model.KindWriting:
			answered := false
			for _, p := range q.Parts {
				if p.HasAnswer() {
					answered = true
					break
				}
			}
			if !answered {
				return &ValidationError{Number: q.Number, Reason: ReasonWritingEmpty}
			}
		case model.KindManual:
			// Manual questions carry no key; only points are checked.
		}
		if q.Points != q.Points || q.Points < 0 { // NaN or negative
			return &ValidationError{Number: q.Number, Reason: ReasonBadPoints}
		}
	}
	return nil
}

// Serialize maps the draft to the wire format: choice questions carry
// their letter (unanswered ones are dropped), writing questions a
// JSON-encoded key of non-blank alternatives per part, manual questions
// a null key.
func (c Collection) Serialize() ([]model.WireQuestion, error) {
	out := make([]model.WireQuestion, 0, len(c.Questions))
	for _, q := range c.Questions {
		w := model.WireQuestion{
			QuestionNumber: q.Number,
			QuestionType:   q.Kind,
			Points:         q.Points,
		}
		switch q.Kind {
		case model.KindChoice:
			if q.Choice == "" {
				continue
			}
			letter := q.Choice
			w.CorrectAnswer = &letter
		case model.KindWriting:
			answered := false
			for _, p := range q.Parts {
				if p.HasAnswer() {
					answered = true
					break
				}
			}
			if !answered {
				continue
			}
			key, err := model.EncodeWritingKey(q.Parts)
			if err != nil {
				return nil, err
			}
			w.CorrectAnswer = &key
		case model.KindManual:
			w.CorrectAnswer = nil
		}
		out = append(out, w)
	}
	return out, nil
}

// locate finds a question's slot by stable ID.
func (c Collection) locate(id string) (int, bool) {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// clone copies the question slice so the returned collection can be
// mutated without touching the receiver.
func (c Collection) clone() Collection {
	out := c
	out.Questions = append([]model.Question{}, c.Questions...)
	return out
}

func clonePartSlice(parts []model.Part) []model.Part {
	out := make([]model.Part, len(parts))
	copy(out, parts)
	return out
}
