package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/titulhq/titul-gateway/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestGetTest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tests/42/id/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.Test{
			ID: 42, Title: "Sinov", Subject: "Matematika",
			Questions: []model.WireQuestion{{QuestionNumber: 1, QuestionType: model.KindChoice, Points: 1}},
		})
	})

	got, err := c.GetTest(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 42 || got.Title != "Sinov" || len(got.Questions) != 1 {
		t.Errorf("test = %+v", got)
	}
}

func TestCheckStatusEscapesName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("student_name"); got != "Ali Valiyev" {
			t.Errorf("student_name = %q", got)
		}
		json.NewEncoder(w).Encode(model.AttemptStatus{CanSubmit: true, SubmissionMode: "single"})
	})

	got, err := c.CheckStatus(context.Background(), 1, 2, "Ali Valiyev")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CanSubmit || got.SubmissionMode != "single" {
		t.Errorf("status = %+v", got)
	}
}

func TestSubmitSendsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submissions/" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var p model.SubmissionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatal(err)
		}
		if p.TestID != 7 || p.Answers["1"] != "A" {
			t.Errorf("payload = %+v", p)
		}
		json.NewEncoder(w).Encode(model.SubmissionResult{Score: 31.5, Grade: "A"})
	})

	got, err := c.Submit(context.Background(), model.SubmissionPayload{
		TestID: 7, StudentTelegramID: 99, StudentName: "Ali",
		Answers: map[string]interface{}{"1": "A"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 31.5 || got.Grade != "A" {
		t.Errorf("result = %+v", got)
	}
}

func TestErrorBodyBecomesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"title": ["Bu maydon talab qilinadi."]}`)
	})

	_, err := c.CreateTest(context.Background(), model.TestPayload{})
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
	if apiErr.Message != "Test nomi Bu maydon talab qilinadi." {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAdminCallsForwardTelegramID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Telegram-Id"); got != "555" {
			t.Errorf("X-Telegram-Id = %q", got)
		}
		io.WriteString(w, `[]`)
	})

	if _, err := c.BroadcastHistory(context.Background(), 555); err != nil {
		t.Fatal(err)
	}
}

func TestListToleratesBothShapes(t *testing.T) {
	bare := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 1, "student_name": "Ali"}]`)
	})
	got, err := bare.ListTestSubmissions(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0].StudentName != "Ali" {
		t.Fatalf("bare array: %v %v", got, err)
	}

	wrapped := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count": 1, "results": [{"id": 2, "student_name": "Vali"}]}`)
	})
	got, err = wrapped.ListTestSubmissions(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0].StudentName != "Vali" {
		t.Fatalf("results wrapper: %v %v", got, err)
	}
}

func TestFetchReportPDFPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	})

	body, contentType, err := c.FetchReportPDF(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	if contentType != "application/pdf" {
		t.Errorf("content type = %q", contentType)
	}
	raw, _ := io.ReadAll(body)
	if string(raw) != "%PDF-1.4 fake" {
		t.Errorf("body = %q", raw)
	}
}

func TestNoContentResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := c.FinishTest(context.Background(), 9); err != nil {
		t.Fatal(err)
	}
}
