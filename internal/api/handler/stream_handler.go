package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/infrastructure/ws"
	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"
)

// Stream events.
const (
	EventWelcomeStart     = "welcome:start"
	EventWelcomeStep      = "welcome:step"
	EventWelcomeSkip      = "welcome:skip"
	EventWelcomeDismiss   = "welcome:dismiss"
	EventWelcomeDismissed = "welcome:dismissed"

	EventAssistantAsk    = "assistant:ask"
	EventAssistantTyping = "assistant:typing"
	EventAssistantReply  = "assistant:reply"
)

// StreamHandler serves /ws and the events that run over it: the welcome
// splash, the assistant's typed replies and toasts pushed by the hub.
type StreamHandler struct {
	hub       *ws.Hub
	welcome   ports.WelcomeService
	assistant ports.AssistantService
	typing    time.Duration
	log       zerolog.Logger
}

// NewStreamHandler registers the stream events on hub.
func NewStreamHandler(hub *ws.Hub, welcome ports.WelcomeService, assistant ports.AssistantService, typing time.Duration, log zerolog.Logger) *StreamHandler {
	h := &StreamHandler{hub: hub, welcome: welcome, assistant: assistant, typing: typing, log: log}
	hub.Handle(EventWelcomeStart, h.welcomeStart)
	hub.Handle(EventWelcomeDismiss, h.welcomeDismiss)
	hub.Handle(EventAssistantAsk, h.assistantAsk)
	return h
}

// Connect upgrades to a WebSocket bound to the request's session.
//
// @Summary      Live stream
// @Tags         stream
// @Success      101  {string}  string  "Switching Protocols"
// @Router       /ws [get]
func (h *StreamHandler) Connect(c echo.Context) error {
	sid, _ := session(c)
	if err := h.hub.Serve(c.Response(), c.Request(), sid); err != nil {
		h.log.Debug().Err(err).Msg("websocket connect failed")
	}
	return nil
}

func (h *StreamHandler) welcomeStart(ctx context.Context, c *ws.Client, _ json.RawMessage) error {
	played, err := h.welcome.Play(ctx, c.SessionID, func(s timeline.Step) {
		c.Send(EventWelcomeStep, welcomeStep{Name: s.Name, AtMs: s.At.Milliseconds()})
	})
	switch {
	case errors.Is(err, context.Canceled):
		metrics.SplashRunsTotal.WithLabelValues("cancelled").Inc()
		return nil
	case err != nil:
		return err
	case !played:
		metrics.SplashRunsTotal.WithLabelValues("skipped").Inc()
		c.Send(EventWelcomeSkip, nil)
	default:
		metrics.SplashRunsTotal.WithLabelValues("completed").Inc()
	}
	return nil
}

func (h *StreamHandler) welcomeDismiss(ctx context.Context, c *ws.Client, _ json.RawMessage) error {
	c.Cancel(EventWelcomeStart)
	if err := h.welcome.Dismiss(ctx, c.SessionID); err != nil {
		return err
	}
	c.Send(EventWelcomeDismissed, nil)
	return nil
}

// assistantAsk types the reply out rune by rune, then sends the full reply.
// A newer question on the same connection cancels the reveal.
func (h *StreamHandler) assistantAsk(ctx context.Context, c *ws.Client, data json.RawMessage) error {
	var req assistantRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Message == "" {
		return fmt.Errorf("assistant:ask needs a message")
	}

	reply := h.assistant.Reply(h.assistant.Language(req.Lang, ""), req.Message)
	metrics.AssistantRepliesTotal.WithLabelValues(reply.Lang, reply.Intent).Inc()

	err := timeline.Reveal(ctx, reply.Text, h.typing, func(partial string) {
		c.Send(EventAssistantTyping, map[string]string{"text": partial})
	})
	if err != nil {
		// cancelled by a newer question or a disconnect
		return nil
	}
	c.Send(EventAssistantReply, reply)
	return nil
}
