package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/assistant"
)

type chatApi struct {
	svc    assistant.Service
	logger core.Logger
}

func registerChatAPI(g *echo.Group, jwt, ctxProfile echo.MiddlewareFunc, deps *Deps) {
	api := chatApi{svc: deps.AssistantSvc, logger: deps.Logger}
	g.POST("/chat", api.chat, jwt, ctxProfile)
}

func (api *chatApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}

	reply, err := api.svc.Ask(ctx.Request().Context(), p, data.Message)
	if err != nil {
		if core.IsValidationError(err) {
			return err
		}
		// the chat always gets something to display
		api.logger.Error("chat failed", errors.Wrap(err, "asking assistant"), p.Person())
		return ctx.JSON(http.StatusInternalServerError, ChatErrorResponse{
			Error:    err.Error(),
			Response: assistant.FallbackResponse,
		})
	}
	return ctx.JSON(http.StatusOK, reply)
}

type (
	ChatRequest struct {
		Message string `json:"message"`
	}

	ChatErrorResponse struct {
		Error    string `json:"error"`
		Response string `json:"response"`
	}
)
