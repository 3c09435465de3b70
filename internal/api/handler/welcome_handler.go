package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicpulse/grievance-portal/internal/core/ports"
	"github.com/civicpulse/grievance-portal/internal/pkg/timeline"
)

type WelcomeHandler struct {
	welcome ports.WelcomeService
	steps   []welcomeStep
}

func NewWelcomeHandler(welcome ports.WelcomeService, seq timeline.Sequence) *WelcomeHandler {
	return &WelcomeHandler{welcome: welcome, steps: toWelcomeSteps(seq)}
}

// Status reports whether the splash was seen, with its timeline so clients
// that do not open the stream can play it locally.
//
// @Summary      Welcome splash status
// @Tags         welcome
// @Produce      json
// @Success      200  {object}  welcomeResponse
// @Router       /v1/welcome [get]
func (h *WelcomeHandler) Status(c echo.Context) error {
	sid, _ := session(c)
	seen, err := h.welcome.Seen(c.Request().Context(), sid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, welcomeResponse{Seen: seen, Steps: h.steps})
}

// Dismiss marks the splash as seen.
//
// @Summary      Dismiss the welcome splash
// @Tags         welcome
// @Success      204  {string}  string  "No Content"
// @Router       /v1/welcome/dismiss [post]
func (h *WelcomeHandler) Dismiss(c echo.Context) error {
	sid, _ := session(c)
	if err := h.welcome.Dismiss(c.Request().Context(), sid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func toWelcomeSteps(seq timeline.Sequence) []welcomeStep {
	out := make([]welcomeStep, len(seq))
	for i, s := range seq {
		out[i] = welcomeStep{Name: s.Name, AtMs: s.At.Milliseconds()}
	}
	return out
}
