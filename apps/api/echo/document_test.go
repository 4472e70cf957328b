package echoapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/campusbuddy/helpdesk/apps/api/echo"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/document"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

func TestDocumentAPI_process(t *testing.T) {
	f := setup(t)
	rec := testutil.CreateRecord(t, f.dataRepo, "Bus Routes", collegedata.CategoryFacilities, "See attached", nil)
	require.NoError(t, f.store.Upload(context.Background(), "routes.txt", "text/plain", strings.NewReader("Route 1: City Center")))
	fileURL := f.store.PublicURL("routes.txt")

	runHTTPTests(t, f, []httpTest{
		{
			name:     "no token",
			method:   http.MethodPost,
			path:     "/v1/documents/process",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "student",
			method:   http.MethodPost,
			path:     "/v1/documents/process",
			body:     marshalObj(t, document.Request{FileURL: fileURL, FileName: "routes.txt", FileType: "text/plain", RecordID: rec.ID}),
			token:    f.token(t, f.student),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/v1/documents/process",
			body:     marshalObj(t, document.Request{FileURL: fileURL}),
			token:    f.token(t, f.faculty),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"fileName": "this field is required",
				"fileType": "this field is required",
				"recordId": "this field is required",
			}),
		},
		{
			name:     "unknown file",
			method:   http.MethodPost,
			path:     "/v1/documents/process",
			body:     marshalObj(t, document.Request{FileURL: f.store.PublicURL("nope.txt"), FileName: "nope.txt", FileType: "text/plain", RecordID: rec.ID}),
			token:    f.token(t, f.faculty),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, echoapi.DocumentErrorResponse{Success: false, Error: "file not found"}),
		},
		{
			name:     "unknown record",
			method:   http.MethodPost,
			path:     "/v1/documents/process",
			body:     marshalObj(t, document.Request{FileURL: fileURL, FileName: "routes.txt", FileType: "text/plain", RecordID: "2b1c0d2e-8a53-4c39-9d43-4d0cbf4f3d1a"}),
			token:    f.token(t, f.faculty),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, echoapi.DocumentErrorResponse{Success: false, Error: "college data not found"}),
		},
	})

	t.Run("success", func(t *testing.T) {
		f.llm.set("Route 1 goes to the City Center.", nil)
		body := marshalObj(t, document.Request{FileURL: fileURL, FileName: "routes.txt", FileType: "text/plain", RecordID: rec.ID})
		req, resp := newAuthRequest(http.MethodPost, "/v1/documents/process", f.token(t, f.faculty), body)
		f.serve(req, resp)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var res document.Result
		decode(t, resp, &res)
		assert.True(t, res.Success)
		assert.True(t, res.AIProcessed)
		assert.Equal(t, len("Route 1 goes to the City Center."), res.ParsedLength)
		assert.Equal(t, rec.ID, res.Record.ID)
		assert.Equal(t, fileURL, res.Record.FileURL)

		saved, err := f.dataRepo.GetRecord(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Route 1 goes to the City Center.", saved.ParsedContent)
	})
}
