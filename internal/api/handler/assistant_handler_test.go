package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/core/service"
)

func newAssistantHandler(t *testing.T) *AssistantHandler {
	t.Helper()
	svc, err := service.NewAssistantService()
	if err != nil {
		t.Fatalf("assistant: %v", err)
	}
	return NewAssistantHandler(svc)
}

func TestAssistantHandler_Messages_AcceptLanguage(t *testing.T) {
	c, rec := newSessionContext(http.MethodGet, "/v1/assistant/messages", "", nil)
	c.Request().Header.Set("Accept-Language", "ta-IN,ta;q=0.9,en;q=0.5")

	if err := newAssistantHandler(t).Messages(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp assistantMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Lang != "ta" || len(resp.Messages) == 0 {
		t.Fatalf("unexpected response: lang=%q messages=%d", resp.Lang, len(resp.Messages))
	}
}

func TestAssistantHandler_Messages_ExplicitCodeWins(t *testing.T) {
	c, rec := newSessionContext(http.MethodGet, "/v1/assistant/messages?lang=hi", "", nil)
	c.Request().Header.Set("Accept-Language", "ta")

	if err := newAssistantHandler(t).Messages(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp assistantMessagesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Lang != "hi" {
		t.Fatalf("expected hi, got %q", resp.Lang)
	}
}

func TestAssistantHandler_Reply(t *testing.T) {
	c, rec := newSessionContext(http.MethodPost, "/v1/assistant/reply", `{"lang":"en","message":"How do I track my case"}`, nil)

	if err := newAssistantHandler(t).Reply(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var reply ports.AssistantReply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if reply.Lang != "en" || reply.Intent != service.IntentTrackCase || reply.Text == "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestAssistantHandler_Reply_EmptyMessage(t *testing.T) {
	c, _ := newSessionContext(http.MethodPost, "/v1/assistant/reply", `{"lang":"en"}`, nil)

	expectHTTPError(t, newAssistantHandler(t).Reply(c), http.StatusBadRequest)
}
