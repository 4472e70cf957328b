package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/document"
)

type collegeDataApi struct {
	svc      collegedata.Service
	docSvc   document.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerCollegeDataAPI(g *echo.Group, conf *core.Config, jwt, ctxProfile echo.MiddlewareFunc, deps *Deps) {
	api := collegeDataApi{
		svc:      deps.DataSvc,
		docSvc:   deps.DocumentSvc,
		validate: deps.Validate,
		logger:   deps.Logger,
	}

	uploadMiddlewares := []echo.MiddlewareFunc{facultyMiddleware}
	if conf.Server.MaxUploadSize != "" {
		uploadMiddlewares = append(uploadMiddlewares, middleware.BodyLimit(conf.Server.MaxUploadSize))
	}

	cg := g.Group("/college-data", jwt, ctxProfile)
	cg.GET("", api.query)
	cg.GET("/categories", api.categories)
	cg.GET("/:id", api.retrieve)

	// faculty dashboard
	cg.POST("", api.create, facultyMiddleware)
	cg.DELETE("", api.destroyMultiple, facultyMiddleware)
	cg.DELETE("/:id", api.destroy, facultyMiddleware)
	cg.POST("/:id/document", api.uploadDocument, uploadMiddlewares...)
}

// Handlers

func (api *collegeDataApi) query(ctx echo.Context) error {
	filter := new(collegedata.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []collegedata.Record{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying college data")
	}
	if records == nil {
		records = []collegedata.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *collegeDataApi) categories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, collegedata.Categories)
}

func (api *collegeDataApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding college data by ID")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *collegeDataApi) create(ctx echo.Context) error {
	var data collegedata.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	rec, err := api.svc.Create(ctx.Request().Context(), data, p.ID)
	if err != nil {
		return errors.Wrap(err, "creating college data")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *collegeDataApi) destroy(ctx echo.Context) error {
	cnt, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deleting college data")
	}
	if cnt == 0 {
		return errHttpNotFound
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *collegeDataApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if _, err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting college data")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// uploadDocument stores the attached file of a record and extracts its text.
func (api *collegeDataApi) uploadDocument(ctx echo.Context) error {
	file, closeFile, err := bindUpload(ctx)
	if err != nil {
		return err
	}
	defer closeFile()

	res, err := api.docSvc.Upload(ctx.Request().Context(), ctx.Param("id"), file)
	if err != nil {
		return documentFailure(ctx, api.logger, errors.Wrap(err, "uploading document"))
	}
	return ctx.JSON(http.StatusOK, res)
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}
