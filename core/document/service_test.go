package document_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/document"
	storagesvc "github.com/campusbuddy/helpdesk/services/storage"
	inmemdb "github.com/campusbuddy/helpdesk/storage/database/inmem"
	testutil "github.com/campusbuddy/helpdesk/tests"
)

const baseURL = "http://files.test/public"

type fakeLLM struct {
	name  string
	reply string
	err   error

	mu    sync.Mutex
	calls []core.CompletionRequest
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Complete(_ context.Context, req core.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeLLM) lastCall(t *testing.T) core.CompletionRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

type brokenAttach struct {
	collegedata.Service
}

func (brokenAttach) AttachDocument(context.Context, string, collegedata.Document) (collegedata.Record, error) {
	return collegedata.Record{}, errors.New("db down")
}

type fixture struct {
	store   *storagesvc.MemoryStorage
	dataSvc collegedata.Service
	record  collegedata.Record
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := inmemdb.NewCollegeDataRepository(inmemdb.NewDB())
	return &fixture{
		store:   storagesvc.NewMemoryStorage(baseURL),
		dataSvc: collegedata.NewService(repo),
		record:  testutil.CreateRecord(t, repo, "Exam Timetable", collegedata.CategoryEvents, "See attached.", nil),
	}
}

func (f *fixture) service(opts document.Options) document.Service {
	return document.NewService(f.store, f.dataSvc, opts, core.NewNopMetrics(), core.NewNopLogger())
}

func (f *fixture) put(t *testing.T, key, content string) string {
	t.Helper()
	require.NoError(t, f.store.Upload(context.Background(), key, "", strings.NewReader(content)))
	return f.store.PublicURL(key)
}

func TestService_Process_text(t *testing.T) {
	tests := []struct {
		name        string
		structurer  *fakeLLM
		wantParsed  string
		wantAI      bool
		wantLLMCall bool
	}{
		{
			name:        "structured",
			structurer:  &fakeLLM{name: "mistral", reply: "## Exams\n- Monday: Maths"},
			wantParsed:  "## Exams\n- Monday: Maths",
			wantAI:      true,
			wantLLMCall: true,
		},
		{
			name:        "model fails",
			structurer:  &fakeLLM{name: "mistral", err: errors.New("boom")},
			wantParsed:  "Monday: Maths",
			wantLLMCall: true,
		},
		{
			name:        "not configured",
			structurer:  &fakeLLM{name: "mistral", err: core.ErrProviderNotConfigured},
			wantParsed:  "Monday: Maths",
			wantLLMCall: true,
		},
		{
			name:        "blank reply",
			structurer:  &fakeLLM{name: "mistral", reply: "  \n"},
			wantParsed:  "Monday: Maths",
			wantLLMCall: true,
		},
		{
			name:       "no model",
			wantParsed: "Monday: Maths",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			fileURL := f.put(t, "k1-exams.txt", "Monday: Maths")

			opts := document.Options{}
			if tc.structurer != nil {
				opts.Structurer = tc.structurer
			}
			res, err := f.service(opts).Process(context.Background(), document.Request{
				FileURL:  fileURL,
				FileName: "exams.txt",
				FileType: "text/plain",
				RecordID: f.record.ID,
			})
			require.NoError(t, err)

			assert.True(t, res.Success)
			assert.Equal(t, "Document processed successfully", res.Message)
			assert.Equal(t, tc.wantAI, res.AIProcessed)
			assert.Equal(t, len([]rune(tc.wantParsed)), res.ParsedLength)
			assert.Equal(t, tc.wantParsed, res.Record.ParsedContent)
			assert.Equal(t, fileURL, res.Record.FileURL)
			assert.Equal(t, "exams.txt", res.Record.FileName)
			assert.Equal(t, "text/plain", res.Record.FileType)

			saved, err := f.dataSvc.GetByID(context.Background(), f.record.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantParsed, saved.ParsedContent)

			if tc.wantLLMCall {
				req := tc.structurer.lastCall(t)
				assert.Contains(t, req.Prompt, "Content: Monday: Maths")
				assert.Contains(t, req.Prompt, "Document: exams.txt")
				assert.Equal(t, 0.1, req.Temperature)
				assert.Equal(t, 4000, req.MaxTokens)
				assert.Nil(t, req.Image)
			}
		})
	}
}

func TestService_Process_placeholders(t *testing.T) {
	tests := []struct {
		fileName, fileType, wantPrefix string
	}{
		{"syllabus.pdf", "application/pdf", "PDF Document: syllabus.pdf\n"},
		{"rules.docx", "application/msword", "Word Document: rules.docx\n"},
		{"marks.xlsx", "application/vnd.ms-excel", "Excel Document: marks.xlsx\n"},
		{"intro.pptx", "application/vnd.ms-powerpoint", "PowerPoint Document: intro.pptx\n"},
		{"data.bin", "application/octet-stream", "Document: data.bin\nFile type: application/octet-stream\n"},
	}
	for _, tc := range tests {
		t.Run(tc.fileName, func(t *testing.T) {
			f := newFixture(t)
			fileURL := f.put(t, "k-"+tc.fileName, "\x00\x01binary")

			res, err := f.service(document.Options{}).Process(context.Background(), document.Request{
				FileURL:  fileURL,
				FileName: tc.fileName,
				FileType: tc.fileType,
				RecordID: f.record.ID,
			})
			require.NoError(t, err)
			assert.False(t, res.AIProcessed)
			assert.True(t, strings.HasPrefix(res.Record.ParsedContent, tc.wantPrefix), res.Record.ParsedContent)
		})
	}
}

func TestService_Process_placeholderIsStructured(t *testing.T) {
	f := newFixture(t)
	fileURL := f.put(t, "k-syllabus.pdf", "%PDF-1.4")
	llm := &fakeLLM{name: "mistral", reply: "Structured syllabus"}

	res, err := f.service(document.Options{Structurer: llm}).Process(context.Background(), document.Request{
		FileURL:  fileURL,
		FileName: "syllabus.pdf",
		FileType: "application/pdf",
		RecordID: f.record.ID,
	})
	require.NoError(t, err)
	assert.True(t, res.AIProcessed)
	assert.Equal(t, "Structured syllabus", res.Record.ParsedContent)
	assert.Contains(t, llm.lastCall(t).Prompt, "PDF Document: syllabus.pdf")
	assert.NotContains(t, llm.lastCall(t).Prompt, "%PDF-1.4")
}

func TestService_Process_image(t *testing.T) {
	tests := []struct {
		name       string
		vision     *fakeLLM
		wantParsed string
		wantAI     bool
	}{
		{
			name:       "extracted",
			vision:     &fakeLLM{name: "mistral-vision", reply: "Room 101: Physics"},
			wantParsed: "Image Document: board.png\n\nExtracted Content:\nRoom 101: Physics",
			wantAI:     true,
		},
		{
			name:       "failed",
			vision:     &fakeLLM{name: "mistral-vision", err: errors.New("boom")},
			wantParsed: "Image Document: board.png\nContent: This image contains visual information but OCR processing failed.",
		},
		{
			name:       "nothing extracted",
			vision:     &fakeLLM{name: "mistral-vision", reply: " "},
			wantParsed: "Image Document: board.png\nContent: This image contains visual information but no text was extracted.",
		},
		{
			name:   "not configured",
			vision: &fakeLLM{name: "mistral-vision", err: core.ErrProviderNotConfigured},
			wantParsed: "Image Document: board.png\nContent: This image contains visual information relevant to the college. " +
				"OCR processing is not available without a vision API key.",
		},
		{
			name: "no model",
			wantParsed: "Image Document: board.png\nContent: This image contains visual information relevant to the college. " +
				"OCR processing is not available without a vision API key.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			fileURL := f.put(t, "k-board.png", "\x89PNG")

			opts := document.Options{}
			if tc.vision != nil {
				opts.Vision = tc.vision
			}
			res, err := f.service(opts).Process(context.Background(), document.Request{
				FileURL:  fileURL,
				FileName: "board.png",
				FileType: "image/png",
				RecordID: f.record.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantAI, res.AIProcessed)
			assert.Equal(t, tc.wantParsed, res.Record.ParsedContent)

			if tc.vision != nil {
				req := tc.vision.lastCall(t)
				require.NotNil(t, req.Image)
				assert.Equal(t, "image/png", req.Image.MIMEType)
				assert.Equal(t, []byte("\x89PNG"), req.Image.Data)
			}
		})
	}
}

func TestService_Process_errors(t *testing.T) {
	f := newFixture(t)
	svc := f.service(document.Options{})
	fileURL := f.put(t, "k-notes.txt", "hello")

	_, err := svc.Process(context.Background(), document.Request{FileURL: fileURL, FileName: "notes.txt"})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, "missing required parameters", err.Error())

	_, err = svc.Process(context.Background(), document.Request{
		FileURL:  baseURL + "/missing.txt",
		FileName: "missing.txt",
		FileType: "text/plain",
		RecordID: f.record.ID,
	})
	assert.Equal(t, core.ErrFileNotFound, pkgerrors.Cause(err))

	_, err = svc.Process(context.Background(), document.Request{
		FileURL:  fileURL,
		FileName: "notes.txt",
		FileType: "text/plain",
		RecordID: "unknown",
	})
	assert.Equal(t, collegedata.ErrNotFound, pkgerrors.Cause(err))
}

func TestService_Upload(t *testing.T) {
	f := newFixture(t)
	svc := f.service(document.Options{})

	res, err := svc.Upload(context.Background(), f.record.ID, document.File{
		Name:        `C:\Users\me\exam notes.txt`,
		ContentType: "text/plain",
		Content:     strings.NewReader("Monday: Maths"),
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "exam notes.txt", res.Record.FileName)
	assert.Equal(t, "Monday: Maths", res.Record.ParsedContent)
	assert.True(t, strings.HasPrefix(res.Record.FileURL, baseURL+"/"))
	assert.True(t, strings.HasSuffix(res.Record.FileURL, "-exam_notes.txt"), res.Record.FileURL)
	assert.Equal(t, 1, f.store.Len())

	ct, ok := f.store.ContentType(document.StorageKey(res.Record.FileURL))
	assert.True(t, ok)
	assert.Equal(t, "text/plain", ct)
}

func TestService_Upload_defaultContentType(t *testing.T) {
	f := newFixture(t)
	res, err := f.service(document.Options{}).Upload(context.Background(), f.record.ID, document.File{
		Name:    "data.bin",
		Content: strings.NewReader("xx"),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", res.Record.FileType)
}

func TestService_Upload_errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service(document.Options{}).Upload(context.Background(), "unknown", document.File{
		Name:    "notes.txt",
		Content: strings.NewReader("x"),
	})
	assert.Equal(t, collegedata.ErrNotFound, pkgerrors.Cause(err))
	assert.Equal(t, 0, f.store.Len())

	_, err = f.service(document.Options{}).Upload(context.Background(), f.record.ID, document.File{
		Content: strings.NewReader("x"),
	})
	assert.True(t, core.IsValidationError(err))

	svc := document.NewService(f.store, brokenAttach{f.dataSvc}, document.Options{}, core.NewNopMetrics(), core.NewNopLogger())
	_, err = svc.Upload(context.Background(), f.record.ID, document.File{
		Name:    "notes.txt",
		Content: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.store.Len(), "failed uploads are removed")
}
