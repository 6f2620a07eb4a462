package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

const secret = "s3cret"

type recordingDispatcher struct {
	events []*core.GitHubEvent
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e *core.GitHubEvent) error {
	d.events = append(d.events, e)
	return d.err
}

func (d *recordingDispatcher) Stop() {}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(eventType string, body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "delivery-1")
	req.Header.Set("X-Hub-Signature-256", signature)
	return req
}

func newHandler(d core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{GitHub: config.GitHubConfig{WebhookSecret: secret}}
	return NewWebhookHandler(cfg, d, slog.New(slog.DiscardHandler))
}

const commentPayload = `{
  "action": "created",
  "issue": {"number": 7, "title": "Add login", "pull_request": {"url": "https://api.github.com/repos/acme/web/pulls/7"}},
  "comment": {"body": "/council review", "user": {"login": "alice", "id": 10}},
  "repository": {"name": "web", "full_name": "acme/web", "owner": {"login": "acme"}},
  "installation": {"id": 42}
}`

func TestWebhook_ReviewCommand(t *testing.T) {
	d := &recordingDispatcher{}
	body := []byte(commentPayload)
	rec := httptest.NewRecorder()

	newHandler(d).Handle(rec, webhookRequest("issue_comment", body, sign(body)))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	e := d.events[0]
	assert.Equal(t, "acme", e.RepoOwner)
	assert.Equal(t, "web", e.RepoName)
	assert.Equal(t, 7, e.PRNumber)
	assert.Equal(t, int64(42), e.InstallationID)
	assert.Equal(t, "alice", e.Commenter)
	assert.Equal(t, "delivery-1", e.DeliveryID)
}

func TestWebhook_IgnoresOtherComments(t *testing.T) {
	d := &recordingDispatcher{}
	body := bytes.Replace([]byte(commentPayload), []byte("/council review"), []byte("LGTM"), 1)
	rec := httptest.NewRecorder()

	newHandler(d).Handle(rec, webhookRequest("issue_comment", body, sign(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, d.events)
}

func TestWebhook_Ping(t *testing.T) {
	body := []byte(`{"zen": "Keep it logically awesome.", "hook_id": 1}`)
	rec := httptest.NewRecorder()

	newHandler(&recordingDispatcher{}).Handle(rec, webhookRequest("ping", body, sign(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestWebhook_BadSignature(t *testing.T) {
	d := &recordingDispatcher{}
	rec := httptest.NewRecorder()

	newHandler(d).Handle(rec, webhookRequest("issue_comment", []byte(commentPayload), "sha256=deadbeef"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, d.events)
}

func TestWebhook_QueueFull(t *testing.T) {
	d := &recordingDispatcher{err: assert.AnError}
	body := []byte(commentPayload)
	rec := httptest.NewRecorder()

	newHandler(d).Handle(rec, webhookRequest("issue_comment", body, sign(body)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
