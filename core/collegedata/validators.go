package collegedata

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/campusbuddy/helpdesk/core"
)

var (
	categoryTag  = "category"
	categoryText = "must be one of: " + strings.Join(Categories, ", ")
)

// InitValidators registers the college data validators on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

// categoryValidation checks the field is one of Categories (`oneof` cannot express names with spaces).
func categoryValidation(fl validator.FieldLevel) bool {
	return IsCategory(fl.Field().String())
}
