// Package upstream is the HTTP client for the Titul backend API. The
// backend owns all persistence, scoring and fan-out; this client only
// speaks its REST contracts and reduces its error bodies to display
// messages.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/titulhq/titul-gateway/internal/model"
)

const headerTelegramID = "X-Telegram-Id"

// Client calls the Titul backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client rooted at baseURL (no trailing slash).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ─── Tests ──────────────────────────────────────────────────────────

// GetTest fetches a full test definition by ID.
func (c *Client) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	var out model.Test
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tests/%d/id/", id), 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTestByCode fetches the login-screen summary for an access code.
func (c *Client) GetTestByCode(ctx context.Context, code string) (*model.TestSummary, error) {
	var out model.TestSummary
	if err := c.do(ctx, http.MethodGet, "/tests/code/"+code+"/", 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckStatus asks whether a student may (re)submit a test.
func (c *Client) CheckStatus(ctx context.Context, testID, userID int64, studentName string) (*model.AttemptStatus, error) {
	path := fmt.Sprintf("/tests/%d/check_status/%d/?student_name=%s", testID, userID, url.QueryEscape(studentName))
	var out model.AttemptStatus
	if err := c.do(ctx, http.MethodGet, path, 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTest saves a new test and returns its ID and access code.
func (c *Client) CreateTest(ctx context.Context, p model.TestPayload) (*model.SavedTest, error) {
	var out model.SavedTest
	if err := c.do(ctx, http.MethodPost, "/tests/", 0, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTest replaces an existing test definition.
func (c *Client) UpdateTest(ctx context.Context, id int64, p model.TestPayload) (*model.SavedTest, error) {
	var out model.SavedTest
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tests/%d/", id), 0, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchTestExpiry updates only a test's expiry timestamp.
func (c *Client) PatchTestExpiry(ctx context.Context, id int64, p model.ExpiryPatch) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/tests/%d/", id), 0, p, nil)
}

// ListUserTests returns the tests a creator owns.
func (c *Client) ListUserTests(ctx context.Context, userID int64) ([]model.Test, error) {
	var out []model.Test
	if err := c.doList(ctx, fmt.Sprintf("/tests/user/%d/", userID), 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FinishTest deactivates a test so no further submissions are accepted.
func (c *Client) FinishTest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tests/%d/finish/", id), 0, nil, nil)
}

// SendReport asks the backend to deliver the results report to the
// creator's Telegram chat.
func (c *Client) SendReport(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tests/%d/send_report/", id), 0, nil, nil)
}

// ─── Submissions ────────────────────────────────────────────────────

// Submit grades an answer sheet and returns the result.
func (c *Client) Submit(ctx context.Context, p model.SubmissionPayload) (*model.SubmissionResult, error) {
	var out model.SubmissionResult
	if err := c.do(ctx, http.MethodPost, "/submissions/", 0, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTestSubmissions returns the teacher-facing results table.
func (c *Client) ListTestSubmissions(ctx context.Context, testID int64) ([]model.TestSubmission, error) {
	var out []model.TestSubmission
	if err := c.doList(ctx, fmt.Sprintf("/submissions/test/%d/", testID), 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchReportPDF streams a submission report. The caller owns the body.
func (c *Client) FetchReportPDF(ctx context.Context, submissionID int64) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fmt.Sprintf("/submissions/%d/report/", submissionID), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return nil, "", &APIError{Status: resp.StatusCode, Message: ExtractMessage(body)}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// ─── Users / public ─────────────────────────────────────────────────

// GetUser fetches a platform user by Telegram ID.
func (c *Client) GetUser(ctx context.Context, telegramID int64) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/", telegramID), 0, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPublicStats returns the landing-page counters as raw JSON.
func (c *Client) GetPublicStats(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/public-stats/", 0, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAnnouncements returns the public announcement feed.
func (c *Client) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	var out []model.Announcement
	if err := c.doList(ctx, "/announcements/", 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ─── Admin ──────────────────────────────────────────────────────────
//
// Every admin call forwards the caller's Telegram ID; the backend makes
// the authorization decision and its rejection is surfaced verbatim.

// GetSettings returns the full settings document.
func (c *Client) GetSettings(ctx context.Context, callerID int64) (model.Settings, error) {
	var out model.Settings
	if err := c.do(ctx, http.MethodGet, "/admin/settings/", callerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatchSettings forwards a settings update unchanged.
func (c *Client) PatchSettings(ctx context.Context, callerID int64, doc model.Settings) (model.Settings, error) {
	var out model.Settings
	if err := c.do(ctx, http.MethodPatch, "/admin/settings/", callerID, doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAdminStats returns the admin dashboard counters as raw JSON.
func (c *Client) GetAdminStats(ctx context.Context, callerID int64) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/admin/stats/", callerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAdminActivity returns the recent-activity feed as raw JSON.
func (c *Client) GetAdminActivity(ctx context.Context, callerID int64) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/admin/activity/", callerID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns the admin user table.
func (c *Client) ListUsers(ctx context.Context, callerID int64) ([]model.User, error) {
	var out []model.User
	if err := c.doList(ctx, "/admin/users/", callerID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PatchUser updates a user's role or balance.
func (c *Client) PatchUser(ctx context.Context, callerID, telegramID int64, patch map[string]interface{}) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/users/%d/", telegramID), callerID, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReceipts returns pending and processed payment receipts.
func (c *Client) ListReceipts(ctx context.Context, callerID int64) ([]model.Receipt, error) {
	var out []model.Receipt
	if err := c.doList(ctx, "/admin/receipts/", callerID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyReceipt accepts or rejects a payment receipt.
func (c *Client) VerifyReceipt(ctx context.Context, callerID, receiptID int64, p model.VerifyReceiptPayload) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/receipts/%d/verify/", receiptID), callerID, p, nil)
}

// ─── Broadcasts ─────────────────────────────────────────────────────

// CreateBroadcast starts a fan-out to the targeted roles.
func (c *Client) CreateBroadcast(ctx context.Context, callerID int64, d model.BroadcastDraft) error {
	return c.do(ctx, http.MethodPost, "/admin/broadcast/", callerID, d, nil)
}

// EditBroadcast rewrites an already-sent broadcast's message.
func (c *Client) EditBroadcast(ctx context.Context, callerID, broadcastID int64, d model.BroadcastDraft) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/admin/broadcast/%d/", broadcastID), callerID, d, nil)
}

// DeleteBroadcast removes a broadcast from the history.
func (c *Client) DeleteBroadcast(ctx context.Context, callerID, broadcastID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/broadcast/%d/", broadcastID), callerID, nil, nil)
}

// BroadcastHistory returns the fan-out history with live status counts.
func (c *Client) BroadcastHistory(ctx context.Context, callerID int64) ([]model.Broadcast, error) {
	var out []model.Broadcast
	if err := c.doList(ctx, "/admin/broadcast/history/", callerID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ─── Plumbing ───────────────────────────────────────────────────────

// do runs one JSON round trip. callerID > 0 forwards the Telegram ID
// header; out == nil discards the response body.
func (c *Client) do(ctx context.Context, method, path string, callerID int64, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if callerID > 0 {
		req.Header.Set(headerTelegramID, strconv.FormatInt(callerID, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode, Message: ExtractMessage(raw)}
		log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("upstream error")
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// doList runs a GET that may come back either as a bare JSON array or
// wrapped in a DRF-style results envelope.
func (c *Client) doList(ctx context.Context, path string, callerID int64, out interface{}) error {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, callerID, nil, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	var env model.ListEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	if len(env.Results) == 0 {
		return nil
	}
	return json.Unmarshal(env.Results, out)
}
