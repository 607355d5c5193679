//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultBaseURL = "http://localhost:8080/api/v1"
	authorID       = 990001
	authorName     = "E2E Author"
	draftTitle     = "E2E Sinov Testi"
	draftSubject   = "Matematika"
	typedAnswer    = "javob"
)

var (
	baseURL     string
	authorToken string
	draftID     string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	os.Exit(m.Run())
}

// questionView mirrors the wire shape of a draft question.
type questionView struct {
	ID     string  `json:"id"`
	Number int     `json:"question_number"`
	Kind   string  `json:"question_type"`
	Choice string  `json:"correct_answer"`
	Points float64 `json:"points"`
	Parts  []struct {
		Alternatives []string `json:"alternatives"`
	} `json:"parts"`
}

type draftView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Collection struct {
		Subject   string         `json:"subject"`
		Questions []questionView `json:"questions"`
	} `json:"collection"`
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Open a session
	t.Run("OpenSession", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"telegram_id": authorID,
			"name":        authorName,
		}
		resp, err := post("/auth/session", reqBody, "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Token string `json:"token"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		authorToken = body.Data.Token
		if authorToken == "" {
			t.Fatal("token missing")
		}
		t.Logf("Session token received")
	})

	// Step 2: Whoami
	t.Run("Me", func(t *testing.T) {
		resp, err := get("/auth/me", authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 3: Subjects list must include the one we are about to use
	t.Run("ListSubjects", func(t *testing.T) {
		resp, err := get("/drafts/subjects", authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Subjects []struct {
					Name string `json:"name"`
				} `json:"subjects"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		found := false
		for _, s := range body.Data.Subjects {
			if s.Name == draftSubject {
				found = true
			}
		}
		if !found {
			t.Fatalf("subject %q not offered", draftSubject)
		}
	})

	// Step 4: Create a draft and expect the 35 choice placeholders
	t.Run("CreateDraft", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"title":           draftTitle,
			"subject":         draftSubject,
			"submission_mode": "single",
		}
		resp, err := post("/drafts", reqBody, authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				Draft draftView `json:"draft"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		draftID = body.Data.Draft.ID
		if draftID == "" {
			t.Fatal("draft id missing")
		}
		if n := len(body.Data.Draft.Collection.Questions); n != 35 {
			t.Fatalf("expected 35 starter questions, got %d", n)
		}
		t.Logf("Draft %s created", draftID)
	})

	// Step 5: Mark question 1 answer A
	t.Run("SetChoiceAnswer", func(t *testing.T) {
		q := fetchQuestion(t, 1)
		reqBody := map[string]interface{}{
			"question_id": q.ID,
			"letter":      "A",
		}
		resp, err := post("/drafts/"+draftID+"/choice", reqBody, authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		if q := fetchQuestion(t, 1); q.Choice != "A" {
			t.Fatalf("expected correct_answer A, got %q", q.Choice)
		}
	})

	// Step 6: Append a writing question (number 36, 2 points for Matematika)
	t.Run("AppendWritingQuestion", func(t *testing.T) {
		resp, err := post("/drafts/"+draftID+"/questions", nil, authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		q := fetchQuestion(t, 36)
		if q.Kind != "writing" {
			t.Fatalf("expected writing question, got %q", q.Kind)
		}
		if q.Points != 2.0 {
			t.Fatalf("expected 2.0 points, got %v", q.Points)
		}
	})

	// Step 7: Type an answer key through the keyboard endpoints
	t.Run("KeyboardTyping", func(t *testing.T) {
		q := fetchQuestion(t, 36)
		focusBody := map[string]interface{}{
			"coord": map[string]interface{}{
				"question_id": q.ID,
				"part":        0,
				"alt":         0,
			},
		}
		resp, err := post("/drafts/"+draftID+"/keyboard/focus", focusBody, authorToken)
		if err != nil {
			t.Fatalf("focus failed: %v", err)
		}
		resp.Body.Close()

		for _, ch := range typedAnswer {
			pressBody := map[string]interface{}{
				"key":  "insert",
				"text": string(ch),
			}
			resp, err := post("/drafts/"+draftID+"/keyboard/press", pressBody, authorToken)
			if err != nil {
				t.Fatalf("press failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("press status %d: %s", resp.StatusCode, readBody(resp))
			}
			resp.Body.Close()
		}

		q = fetchQuestion(t, 36)
		if len(q.Parts) == 0 || len(q.Parts[0].Alternatives) == 0 {
			t.Fatal("writing question lost its part")
		}
		if got := q.Parts[0].Alternatives[0]; got != typedAnswer {
			t.Fatalf("expected typed %q, got %q", typedAnswer, got)
		}
	})

	// Step 8: Saving with unset choice answers must be rejected in Uzbek
	t.Run("SaveIncompleteRejected", func(t *testing.T) {
		resp, err := post("/drafts/"+draftID+"/save", nil, authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.StatusCode, readBody(resp))
		}
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		decodeJSON(t, resp, &body)
		if !strings.Contains(body.Error.Message, "belgilanmagan") {
			t.Fatalf("unexpected validation message: %q", body.Error.Message)
		}
		t.Logf("Save rejected: %s", body.Error.Message)
	})

	// Step 9: Discard and confirm the draft is gone
	t.Run("DiscardDraft", func(t *testing.T) {
		req, err := http.NewRequest("DELETE", baseURL+"/drafts/"+draftID, nil)
		if err != nil {
			t.Fatalf("request build failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+authorToken)
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}

		resp, err = get("/drafts/"+draftID, authorToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 after discard, got %d", resp.StatusCode)
		}
	})
}

func fetchQuestion(t *testing.T, number int) questionView {
	t.Helper()
	resp, err := get("/drafts/"+draftID, authorToken)
	if err != nil {
		t.Fatalf("fetch draft: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch draft status %d: %s", resp.StatusCode, readBody(resp))
	}
	var body struct {
		Data struct {
			Draft draftView `json:"draft"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)
	for _, q := range body.Data.Draft.Collection.Questions {
		if q.Number == number {
			return q
		}
	}
	t.Fatalf("question %d not in draft", number)
	return questionView{}
}

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
