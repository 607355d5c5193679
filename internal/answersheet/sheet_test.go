package answersheet

import (
	"reflect"
	"testing"

	"github.com/titulhq/titul-gateway/internal/model"
)

func strptr(s string) *string { return &s }

func sampleQuestions() []model.WireQuestion {
	return []model.WireQuestion{
		{QuestionNumber: 1, QuestionType: model.KindChoice, CorrectAnswer: strptr("A"), Points: 1},
		{QuestionNumber: 2, QuestionType: model.KindChoice, CorrectAnswer: strptr("B"), Points: 1},
		{QuestionNumber: 36, QuestionType: model.KindWriting, CorrectAnswer: strptr(`[["x"],["y","z"]]`), Points: 2},
		{QuestionNumber: 37, QuestionType: model.KindWriting, CorrectAnswer: strptr("legacy"), Points: 2},
		{QuestionNumber: 45, QuestionType: model.KindManual, CorrectAnswer: nil, Points: 10},
	}
}

func TestNewSlotShapes(t *testing.T) {
	s := New(7, sampleQuestions())

	if got := len(s.Entries[36].Slots); got != 2 {
		t.Errorf("two-part key got %d slots", got)
	}
	if got := len(s.Entries[37].Slots); got != 1 {
		t.Errorf("legacy key got %d slots, want 1", got)
	}
	if got := len(s.Entries[45].Slots); got != 1 {
		t.Errorf("manual question got %d slots, want 1", got)
	}
	if s.Entries[1].Slots != nil {
		t.Error("choice entry should not carry slots")
	}
}

func TestSetAndReadBack(t *testing.T) {
	s := New(7, sampleQuestions())

	s.SetChoice(1, "C")
	if s.Slot(1, 0) != "C" {
		t.Errorf("choice readback = %q", s.Slot(1, 0))
	}

	s.SetSlot(36, 1, "javob")
	if s.Slot(36, 1) != "javob" {
		t.Errorf("slot readback = %q", s.Slot(36, 1))
	}

	// Out-of-range and wrong-kind writes are ignored.
	s.SetSlot(36, 5, "x")
	s.SetSlot(1, 0, "x")
	s.SetChoice(36, "A")
	if s.Slot(36, 0) != "" || s.Entries[36].Value != "" {
		t.Error("mismatched write leaked into entry")
	}
	if s.Slot(99, 0) != "" {
		t.Error("unknown number should read empty")
	}
}

func TestUnanswered(t *testing.T) {
	s := New(7, sampleQuestions())

	// Everything except the manual question starts unanswered.
	if got := s.Unanswered(); !reflect.DeepEqual(got, []int{1, 2, 36, 37}) {
		t.Fatalf("initial unanswered = %v", got)
	}

	s.SetChoice(1, "A")
	s.SetChoice(2, "D")
	s.SetSlot(36, 0, "x")
	s.SetSlot(37, 0, "ok")

	// Question 36 still has a blank second slot.
	if got := s.Unanswered(); !reflect.DeepEqual(got, []int{36}) {
		t.Fatalf("partial unanswered = %v", got)
	}

	s.SetSlot(36, 1, "y")
	if got := s.Unanswered(); len(got) != 0 {
		t.Fatalf("complete sheet unanswered = %v", got)
	}

	// Whitespace does not count as an answer.
	s.SetSlot(37, 0, "   ")
	if got := s.Unanswered(); !reflect.DeepEqual(got, []int{37}) {
		t.Fatalf("whitespace unanswered = %v", got)
	}
}

func TestAnswersPayload(t *testing.T) {
	s := New(7, sampleQuestions())
	s.SetChoice(1, "A")
	s.SetSlot(36, 0, "birinchi")
	s.SetSlot(36, 1, "ikkinchi")

	p := s.AnswersPayload()
	if p["1"] != "A" {
		t.Errorf(`payload["1"] = %v`, p["1"])
	}
	if p["2"] != "" {
		t.Errorf(`payload["2"] = %v, want empty string`, p["2"])
	}
	slots, ok := p["36"].([]string)
	if !ok || !reflect.DeepEqual(slots, []string{"birinchi", "ikkinchi"}) {
		t.Errorf(`payload["36"] = %v`, p["36"])
	}
	if _, ok := p["45"].([]string); !ok {
		t.Errorf(`payload["45"] = %v, want slot array`, p["45"])
	}
}

func TestValidateManualScores(t *testing.T) {
	qs := []model.WireQuestion{
		{QuestionNumber: 41, QuestionType: model.KindManual, Points: 30},
		{QuestionNumber: 42, QuestionType: model.KindManual, Points: 35},
		{QuestionNumber: 1, QuestionType: model.KindChoice, Points: 1},
	}

	got, err := ValidateManualScores(qs, map[int]string{41: "0", 42: "35"})
	if err != nil {
		t.Fatalf("bounds are inclusive: %v", err)
	}
	if got[41] != 0 || got[42] != 35 {
		t.Errorf("parsed = %v", got)
	}

	got, err = ValidateManualScores(qs, map[int]string{41: " 17.5 "})
	if err != nil || got[41] != 17.5 {
		t.Fatalf("trimmed decimal rejected: %v %v", got, err)
	}

	// Entries for unknown or non-manual questions are skipped.
	got, err = ValidateManualScores(qs, map[int]string{1: "999", 99: "5"})
	if err != nil || len(got) != 0 {
		t.Fatalf("non-manual entries should be ignored: %v %v", got, err)
	}

	for _, bad := range []string{"-1", "31", "abc", ""} {
		_, err := ValidateManualScores(qs, map[int]string{41: bad})
		se, ok := err.(*ScoreError)
		if !ok {
			t.Fatalf("score %q: expected ScoreError, got %v", bad, err)
		}
		if se.Number != 41 || se.Max != 30 {
			t.Errorf("score %q: error = %+v", bad, se)
		}
	}

	se := &ScoreError{Number: 41, Max: 30}
	want := "41-savol bali noto'g'ri kiritilgan! Ball 0 va 30 orasida bo'lishi kerak."
	if se.Error() != want {
		t.Errorf("message = %q", se.Error())
	}
}
