package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the three question variants. Every consumer
// switches on it exhaustively.
type Kind string

const (
	KindChoice  Kind = "choice"
	KindWriting Kind = "writing"
	KindManual  Kind = "manual"
)

// Valid reports whether k is one of the three known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindChoice, KindWriting, KindManual:
		return true
	}
	return false
}

// Part is one scored sub-answer of a Writing question. Any one of its
// alternatives matching counts as correct for that part.
type Part struct {
	Alternatives []string `json:"alternatives"`
}

// NewPart returns a part with a single empty alternative, the minimal
// editable shape.
func NewPart() Part {
	return Part{Alternatives: []string{""}}
}

// HasAnswer reports whether any alternative is non-blank. Whitespace
// does not count as an answer.
func (p Part) HasAnswer() bool {
	for _, a := range p.Alternatives {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// Question is one editable question in a draft or a served test.
// Questions carry a stable ID so collection operations address them
// without relying on display position.
type Question struct {
	ID     string  `json:"id"`
	Number int     `json:"question_number"`
	Kind   Kind    `json:"question_type"`
	Choice string  `json:"correct_answer,omitempty"` // Choice only
	Parts  []Part  `json:"parts,omitempty"`          // Writing only
	Points float64 `json:"points"`
}

// NewChoiceQuestion returns a choice placeholder at the given number.
func NewChoiceQuestion(number int) Question {
	return Question{
		ID:     uuid.New().String(),
		Number: number,
		Kind:   KindChoice,
		Points: 1.0,
		Parts:  []Part{NewPart()},
	}
}

// ─── Wire encoding ──────────────────────────────────────────────────
//
// The upstream stores a Writing answer key as a JSON string embedded in
// the correct_answer field: an array of arrays of accepted alternative
// strings, one inner array per part. The double encoding is part of the
// backend contract and is preserved exactly.

// WireQuestion matches one element of the upstream questions[] array.
type WireQuestion struct {
	QuestionNumber int     `json:"question_number"`
	QuestionType   Kind    `json:"question_type"`
	CorrectAnswer  *string `json:"correct_answer"`
	Points         float64 `json:"points"`
}

// EncodeWritingKey serializes parts to the wire string, dropping blank
// alternatives. Parts whose alternatives are all blank encode as empty
// inner arrays, matching the original serializer.
func EncodeWritingKey(parts []Part) (string, error) {
	outer := make([][]string, 0, len(parts))
	for _, p := range parts {
		inner := make([]string, 0, len(p.Alternatives))
		for _, a := range p.Alternatives {
			if a != "" {
				inner = append(inner, a)
			}
		}
		outer = append(outer, inner)
	}
	raw, err := json.Marshal(outer)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeWritingKey parses a wire answer key back into parts. A key that
// is not a JSON array (legacy single-answer keys) hydrates as one part
// with the raw string as its only alternative. Inner elements that are
// bare strings are promoted to single-alternative parts.
func DecodeWritingKey(raw string) []Part {
	var outer []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &outer); err != nil {
		return []Part{{Alternatives: []string{raw}}}
	}

	parts := make([]Part, 0, len(outer))
	for _, el := range outer {
		var alts []string
		if err := json.Unmarshal(el, &alts); err == nil {
			if len(alts) == 0 {
				alts = []string{""}
			}
			parts = append(parts, Part{Alternatives: alts})
			continue
		}
		var single string
		if err := json.Unmarshal(el, &single); err == nil {
			parts = append(parts, Part{Alternatives: []string{single}})
			continue
		}
		parts = append(parts, NewPart())
	}
	if len(parts) == 0 {
		parts = []Part{NewPart()}
	}
	return parts
}

// KeyPartCount reports how many parts a served answer key describes.
// Returns 0 when the key is absent or not an array, which callers treat
// as a single-slot answer.
func KeyPartCount(raw *string) int {
	if raw == nil || *raw == "" {
		return 0
	}
	var outer []json.RawMessage
	if err := json.Unmarshal([]byte(*raw), &outer); err != nil {
		return 0
	}
	return len(outer)
}
