package model

import "encoding/json"

// SubmissionPayload is the body of POST /submissions/. Answers are
// keyed by question number; a value is either a single string (choice)
// or an array of per-part strings (writing, manual).
type SubmissionPayload struct {
	TestID            int64                  `json:"test_id"`
	StudentTelegramID int64                  `json:"student_telegram_id"`
	StudentName       string                 `json:"student_name"`
	Answers           map[string]interface{} `json:"answers"`
}

// SubmissionResult is the graded outcome returned by the upstream.
// ScaledScore is the backend's difficulty-adjusted (Rasch) score and is
// opaque to this layer.
type SubmissionResult struct {
	StudentName   string   `json:"student_name"`
	AttemptNumber int      `json:"attempt_number"`
	CorrectCount  int      `json:"correct_count"`
	Score         float64  `json:"score"`
	ScaledScore   *float64 `json:"scaled_score,omitempty"`
	Grade         string   `json:"grade"`
}

// TestSubmission is one row of GET /submissions/test/{id}/, shown on
// the teacher's results screen. Individual answers stay upstream.
type TestSubmission struct {
	ID            int64    `json:"id"`
	StudentName   string   `json:"student_name"`
	AttemptNumber int      `json:"attempt_number"`
	CorrectCount  int      `json:"correct_count"`
	Score         float64  `json:"score"`
	ScaledScore   *float64 `json:"scaled_score,omitempty"`
	Grade         string   `json:"grade"`
	SubmittedAt   string   `json:"submitted_at"`
}

// ListEnvelope tolerates the upstream's two list shapes: a bare array
// or a DRF-style {"results": [...]} wrapper.
type ListEnvelope struct {
	Results json.RawMessage `json:"results"`
}
