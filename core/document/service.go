package document

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
)

// generation parameters of the document completions
const (
	docTemperature = 0.1
	docMaxTokens   = 4000
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type (
	// Request asks to (re)process a file already stored in the documents bucket.
	Request struct {
		FileURL  string `json:"fileUrl"`
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
		RecordID string `json:"recordId"`
	}

	Result struct {
		Success      bool               `json:"success"`
		Message      string             `json:"message"`
		ParsedLength int                `json:"parsedLength"`
		AIProcessed  bool               `json:"aiProcessed"`
		Record       collegedata.Record `json:"record"`
	}

	// File is a faculty upload.
	File struct {
		Name        string
		ContentType string
		Content     io.Reader
	}

	Service interface {
		// Process extracts the text of the file and saves it on the college data record.
		Process(ctx context.Context, req Request) (Result, error)
		// Upload stores the file in the documents bucket, then processes it.
		Upload(ctx context.Context, recordID string, file File) (Result, error)
	}

	Options struct {
		// Structurer rewrites extracted text into structured notes.
		Structurer core.LLMService
		// Vision extracts the text of images.
		Vision core.LLMService
		// Timeout bounds each model call. Zero means no timeout.
		Timeout time.Duration
	}

	service struct {
		storage    core.FileStorage
		dataSvc    collegedata.Service
		structurer core.LLMService
		vision     core.LLMService
		timeout    time.Duration
		metrics    core.Metrics
		logger     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(
	storage core.FileStorage,
	dataSvc collegedata.Service,
	opts Options,
	metrics core.Metrics,
	logger core.Logger,
) Service {
	return &service{
		storage:    storage,
		dataSvc:    dataSvc,
		structurer: opts.Structurer,
		vision:     opts.Vision,
		timeout:    opts.Timeout,
		metrics:    metrics,
		logger:     logger,
	}
}

func (req Request) missingFields() []core.FieldError {
	var flds []core.FieldError
	check := func(field, val string) {
		if strings.TrimSpace(val) == "" {
			flds = append(flds, core.FieldError{Field: field, Error: "this field is required"})
		}
	}
	check("fileUrl", req.FileURL)
	check("fileName", req.FileName)
	check("fileType", req.FileType)
	check("recordId", req.RecordID)
	return flds
}

func (svc *service) Process(ctx context.Context, req Request) (Result, error) {
	if flds := req.missingFields(); flds != nil {
		return Result{}, core.NewValidationError(errors.New("missing required parameters"), flds...)
	}

	key := StorageKey(req.FileURL)
	data, err := svc.storage.Download(ctx, key)
	if err != nil {
		return Result{}, errors.Wrapf(err, "downloading %q", key)
	}

	kind := Classify(req.FileName, req.FileType)
	var (
		parsed      string
		aiProcessed bool
	)
	switch kind {
	case KindText:
		parsed, aiProcessed = svc.structure(ctx, strings.ToValidUTF8(string(data), "�"), req.FileType, req.FileName)
	case KindImage:
		parsed, aiProcessed = svc.ocr(ctx, data, req.FileName, req.FileType)
	default:
		parsed, aiProcessed = svc.structure(ctx, placeholder(kind, req.FileName, req.FileType), req.FileType, req.FileName)
	}

	rec, err := svc.dataSvc.AttachDocument(ctx, req.RecordID, collegedata.Document{
		FileURL:       req.FileURL,
		FileName:      req.FileName,
		FileType:      req.FileType,
		ParsedContent: parsed,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "updating record with parsed content")
	}
	svc.metrics.IncDocumentProcessed(string(kind), aiProcessed)

	return Result{
		Success:      true,
		Message:      "Document processed successfully",
		ParsedLength: utf8.RuneCountInString(parsed),
		AIProcessed:  aiProcessed,
		Record:       rec,
	}, nil
}

func (svc *service) Upload(ctx context.Context, recordID string, file File) (Result, error) {
	if _, err := svc.dataSvc.GetByID(ctx, recordID); err != nil {
		return Result{}, err
	}

	name := path.Base(strings.ReplaceAll(file.Name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return Result{}, core.NewFieldValidationError("file", "file name is required")
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uniqueKey(name)
	if err := svc.storage.Upload(ctx, key, contentType, file.Content); err != nil {
		return Result{}, errors.Wrap(err, "uploading file")
	}

	res, err := svc.Process(ctx, Request{
		FileURL:  svc.storage.PublicURL(key),
		FileName: name,
		FileType: contentType,
		RecordID: recordID,
	})
	if err != nil {
		// do not leave orphan files behind
		if rmErr := svc.storage.Remove(context.Background(), key); rmErr != nil {
			svc.logger.Warn(fmt.Sprintf("removing %q: %v", key, rmErr), rmErr)
		}
		return Result{}, err
	}
	return res, nil
}

// structure has the text model restructure content. Falls back to content as is.
func (svc *service) structure(ctx context.Context, content, fileType, fileName string) (string, bool) {
	if svc.structurer == nil {
		return content, false
	}
	text, err := svc.complete(ctx, svc.structurer, core.CompletionRequest{
		System:      structureSystem,
		Prompt:      structurePrompt(content, fileType, fileName),
		Temperature: docTemperature,
		MaxTokens:   docMaxTokens,
	})
	if err != nil {
		if errors.Cause(err) != core.ErrProviderNotConfigured {
			svc.logger.Warn(fmt.Sprintf("structuring %s: %v", fileName, err), err)
		}
		return content, false
	}
	if strings.TrimSpace(text) == "" {
		return content, false
	}
	return text, true
}

// ocr has the vision model extract the text of an image.
func (svc *service) ocr(ctx context.Context, data []byte, fileName, fileType string) (string, bool) {
	if svc.vision == nil {
		return imageNoKeyText(fileName), false
	}
	text, err := svc.complete(ctx, svc.vision, core.CompletionRequest{
		System:      ocrSystem,
		Prompt:      ocrPrompt,
		Image:       &core.ImageInput{MIMEType: fileType, Data: data},
		Temperature: docTemperature,
		MaxTokens:   docMaxTokens,
	})
	switch {
	case errors.Cause(err) == core.ErrProviderNotConfigured:
		return imageNoKeyText(fileName), false
	case err != nil:
		svc.logger.Warn(fmt.Sprintf("OCR of %s: %v", fileName, err), err)
		return imageFailedText(fileName), false
	case strings.TrimSpace(text) == "":
		return imageNoTextText(fileName), false
	default:
		return imageText(fileName, text), true
	}
}

func (svc *service) complete(ctx context.Context, llm core.LLMService, req core.CompletionRequest) (string, error) {
	if svc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := llm.Complete(ctx, req)
	svc.metrics.ObserveProviderCall(llm.Name(), time.Since(start), err)
	return text, err
}

// StorageKey returns the bucket key of a file URL: its last path segment.
func StorageKey(fileURL string) string {
	if u, err := url.Parse(fileURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	fileURL = strings.SplitN(fileURL, "?", 2)[0]
	return fileURL[strings.LastIndex(fileURL, "/")+1:]
}

// uniqueKey prefixes the file name with a random id, keeping the key a single path segment.
func uniqueKey(name string) string {
	name = strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "file"
	}
	return uuid.New().String() + "-" + name
}
