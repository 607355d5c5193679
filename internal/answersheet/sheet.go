// Package answersheet holds the student-side state of one exam
// attempt: an answer slot per served question, unanswered tracking for
// the confirm gate, and manual score entry for grading.
package answersheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/titulhq/titul-gateway/internal/model"
)

// Entry is one question's live answer. Choice questions hold a single
// letter in Value; writing and manual questions hold one string per
// answer part in Slots.
type Entry struct {
	Number int        `json:"question_number"`
	Kind   model.Kind `json:"question_type"`
	Points float64    `json:"points"`
	Value  string     `json:"value,omitempty"`
	Slots  []string   `json:"slots,omitempty"`
}

// Sheet is the full attempt state, keyed by question number.
type Sheet struct {
	TestID  int            `json:"test_id"`
	Entries map[int]*Entry `json:"entries"`
}

// ScoreError rejects a manual score outside the question's point range.
type ScoreError struct {
	Number int
	Max    float64
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("%d-savol bali noto'g'ri kiritilgan! Ball 0 va %v orasida bo'lishi kerak.", e.Number, e.Max)
}

// New builds a sheet from the served question list. Writing and manual
// questions get one empty slot per key part; keys that are absent or
// not part arrays get a single slot.
func New(testID int, questions []model.WireQuestion) *Sheet {
	s := &Sheet{TestID: testID, Entries: make(map[int]*Entry, len(questions))}
	for _, q := range questions {
		e := &Entry{Number: q.QuestionNumber, Kind: q.QuestionType, Points: q.Points}
		if q.QuestionType != model.KindChoice {
			n := model.KeyPartCount(q.CorrectAnswer)
			if n == 0 {
				n = 1
			}
			e.Slots = make([]string, n)
		}
		s.Entries[q.QuestionNumber] = e
	}
	return s
}

// SetChoice records a choice answer. Unknown numbers and non-choice
// questions are ignored.
func (s *Sheet) SetChoice(number int, letter string) {
	e, ok := s.Entries[number]
	if !ok || e.Kind != model.KindChoice {
		return
	}
	e.Value = letter
}

// SetSlot records one part of a writing or manual answer. Out-of-range
// slots are ignored.
func (s *Sheet) SetSlot(number, slot int, value string) {
	e, ok := s.Entries[number]
	if !ok || e.Kind == model.KindChoice || slot < 0 || slot >= len(e.Slots) {
		return
	}
	e.Slots[slot] = value
}

// Slot returns the current text of one answer slot, or "" when the
// coordinate does not resolve.
func (s *Sheet) Slot(number, slot int) string {
	e, ok := s.Entries[number]
	if !ok {
		return ""
	}
	if e.Kind == model.KindChoice {
		return e.Value
	}
	if slot < 0 || slot >= len(e.Slots) {
		return ""
	}
	return e.Slots[slot]
}

// Unanswered lists the numbers of questions still missing an answer:
// choice questions with no letter and writing questions with any blank
// slot. Manual questions never count because the student may leave them
// for the grader.
func (s *Sheet) Unanswered() []int {
	var out []int
	for n, e := range s.Entries {
		if e.Kind == model.KindManual {
			continue
		}
		if e.Kind == model.KindChoice {
			if strings.TrimSpace(e.Value) == "" {
				out = append(out, n)
			}
			continue
		}
		for _, v := range e.Slots {
			if strings.TrimSpace(v) == "" {
				out = append(out, n)
				break
			}
		}
	}
	sort.Ints(out)
	return out
}

// AnswersPayload flattens the sheet for submission: a map keyed by
// question number string, choice entries as their letter, multi-slot
// entries as their slot array.
func (s *Sheet) AnswersPayload() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Entries))
	for n, e := range s.Entries {
		key := strconv.Itoa(n)
		if e.Kind == model.KindChoice {
			out[key] = e.Value
			continue
		}
		slots := make([]string, len(e.Slots))
		copy(slots, e.Slots)
		out[key] = slots
	}
	return out
}

// ValidateManualScores parses a grader's score entries and checks each
// against its question's point ceiling, inclusive on both ends. The
// returned map holds the parsed values; the first invalid entry aborts
// with a ScoreError.
func ValidateManualScores(questions []model.WireQuestion, raw map[int]string) (map[int]float64, error) {
	byNumber := make(map[int]model.WireQuestion, len(questions))
	for _, q := range questions {
		byNumber[q.QuestionNumber] = q
	}

	numbers := make([]int, 0, len(raw))
	for n := range raw {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	out := make(map[int]float64, len(raw))
	for _, n := range numbers {
		q, ok := byNumber[n]
		if !ok || q.QuestionType != model.KindManual {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw[n]), 64)
		if err != nil || v != v || v < 0 || v > q.Points {
			return nil, &ScoreError{Number: n, Max: q.Points}
		}
		out[n] = v
	}
	return out, nil
}
