package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/document"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		if field == "" || field == "-" {
			continue
		}
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

const uploadField = "file"

// bindUpload opens the multipart file of the request. close must be called once done.
func bindUpload(ctx echo.Context) (file document.File, close func(), err error) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return document.File{}, nil, core.NewFieldValidationError(uploadField, "a file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return document.File{}, nil, errors.Wrap(err, "opening uploaded file")
	}
	file = document.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     src,
	}
	return file, func() { _ = src.Close() }, nil
}
