package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core/syncspot"
)

type syncSpotApi struct {
	svc syncspot.Service
}

func registerSyncSpotAPI(g *echo.Group, jwt, ctxProfile echo.MiddlewareFunc, deps *Deps) {
	api := syncSpotApi{svc: deps.SyncSpotSvc}

	qg := g.Group("/syncspot/questions", jwt, ctxProfile)
	qg.GET("", api.query)
	qg.POST("", api.ask)
	qg.DELETE("/:id", api.destroy)
	qg.POST("/:id/answers", api.answer)
}

// Handlers

func (api *syncSpotApi) query(ctx echo.Context) error {
	questions, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing questions")
	}
	if questions == nil {
		questions = []syncspot.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *syncSpotApi) ask(ctx echo.Context) error {
	var data syncspot.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}

	q, created, err := api.svc.Ask(ctx.Request().Context(), p.ID, data.Question)
	if err != nil {
		return errors.Wrap(err, "asking question")
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, q)
}

func (api *syncSpotApi) answer(ctx echo.Context) error {
	var data syncspot.NewAnswer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnswer")
	}
	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}

	a, err := api.svc.Answer(ctx.Request().Context(), ctx.Param("id"), p, data.Answer)
	if err != nil {
		return errors.Wrap(err, "answering question")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *syncSpotApi) destroy(ctx echo.Context) error {
	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), p); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
