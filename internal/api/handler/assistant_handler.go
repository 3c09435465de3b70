package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicpulse/grievance-portal/internal/api/metrics"
	"github.com/civicpulse/grievance-portal/internal/core/ports"
)

type AssistantHandler struct {
	assistant ports.AssistantService
}

func NewAssistantHandler(assistant ports.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Messages returns the static message table of the negotiated language.
//
// @Summary      Assistant message table
// @Tags         assistant
// @Produce      json
// @Param        lang  query     string  false  "Language code (en, hi, ta)"
// @Success      200   {object}  assistantMessagesResponse
// @Router       /v1/assistant/messages [get]
func (h *AssistantHandler) Messages(c echo.Context) error {
	lang := h.assistant.Language(c.QueryParam("lang"), c.Request().Header.Get("Accept-Language"))
	return c.JSON(http.StatusOK, assistantMessagesResponse{
		Lang:     lang,
		Messages: h.assistant.Messages(lang),
	})
}

// Reply answers one message.
//
// @Summary      Ask the assistant
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        body  body      assistantRequest  true  "Question"
// @Success      200   {object}  ports.AssistantReply
// @Failure      400   {object}  map[string]string
// @Router       /v1/assistant/reply [post]
func (h *AssistantHandler) Reply(c echo.Context) error {
	var req assistantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	lang := h.assistant.Language(req.Lang, c.Request().Header.Get("Accept-Language"))
	reply := h.assistant.Reply(lang, req.Message)
	metrics.AssistantRepliesTotal.WithLabelValues(reply.Lang, reply.Intent).Inc()
	return c.JSON(http.StatusOK, reply)
}
