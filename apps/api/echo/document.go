package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/document"
)

type documentApi struct {
	svc    document.Service
	logger core.Logger
}

func registerDocumentAPI(g *echo.Group, jwt, ctxProfile echo.MiddlewareFunc, deps *Deps) {
	api := documentApi{svc: deps.DocumentSvc, logger: deps.Logger}

	dg := g.Group("/documents", jwt, ctxProfile, facultyMiddleware)
	dg.POST("/process", api.process)
}

// process (re)processes a file that is already in the documents bucket.
func (api *documentApi) process(ctx echo.Context) error {
	var data document.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to document.Request")
	}

	res, err := api.svc.Process(ctx.Request().Context(), data)
	if err != nil {
		return documentFailure(ctx, api.logger, errors.Wrap(err, "processing document"))
	}
	return ctx.JSON(http.StatusOK, res)
}

// DocumentErrorResponse is sent when a document could not be processed.
type DocumentErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// documentFailure answers `{success: false, error}`.
// Validation and shutdown errors are left to the app error handler.
func documentFailure(ctx echo.Context, logger core.Logger, err error) error {
	if core.IsValidationError(err) || core.IsShutdown(err) {
		return err
	}

	cause := errors.Cause(err)
	if herr, ok := domainHTTPError(cause); ok {
		return ctx.JSON(herr.Code, DocumentErrorResponse{Error: cause.Error()})
	}

	var person core.Person
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		person = claims.Person()
	}
	logger.Error("document processing failed", err, person)
	return ctx.JSON(http.StatusInternalServerError, DocumentErrorResponse{Error: err.Error()})
}
