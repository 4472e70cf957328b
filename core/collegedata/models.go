package collegedata

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusbuddy/helpdesk/core"
)

// Categories
const (
	CategoryDepartments      = "Departments"
	CategoryFaculty          = "Faculty"
	CategoryLabs             = "Labs"
	CategoryEvents           = "Events"
	CategoryFacilities       = "Facilities"
	CategoryContactInfo      = "Contact Information"
	CategoryAcademicPrograms = "Academic Programs"
	CategoryLibrary          = "Library"
	CategoryOther            = "Other"
)

var Categories = []string{
	CategoryDepartments,
	CategoryFaculty,
	CategoryLabs,
	CategoryEvents,
	CategoryFacilities,
	CategoryContactInfo,
	CategoryAcademicPrograms,
	CategoryLibrary,
	CategoryOther,
}

func IsCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// Record is a piece of college information managed by the faculty.
type Record struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Content       string    `json:"content"`
	Tags          []string  `json:"tags"`
	FileURL       string    `json:"file_url,omitempty"`
	FileName      string    `json:"file_name,omitempty"`
	FileType      string    `json:"file_type,omitempty"`
	ParsedContent string    `json:"parsed_content,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// NewRecord contains information needed to create a new Record.
type NewRecord struct {
	Title    string `json:"title" form:"title" validate:"required,notblank"`
	Category string `json:"category" form:"category" validate:"required,category"`
	Content  string `json:"content" form:"content" validate:"required,notblank"`
	Tags     string `json:"tags" form:"tags"` // comma-separated
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.Category = core.CleanString(nr.Category)
	nr.Content = core.CleanString(nr.Content)
	return validate.Struct(nr)
}

// Document is the file attached to a Record and its extracted text.
type Document struct {
	FileURL       string
	FileName      string
	FileType      string
	ParsedContent string
}

// ParseTags splits comma-separated tags, dropping blanks. Returns nil when there are none.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
}

// OrderingFields maps the API ordering fields to their columns.
var OrderingFields = map[string]string{
	"title":      "title",
	"category":   "category",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// DefaultOrdering is newest first.
var DefaultOrdering = []core.DBOrdering{{Field: "created_at"}}
