package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusbuddy/helpdesk/core"
)

// User types
const (
	TypeStudent = "student"
	TypeFaculty = "faculty"
)

var UserTypes = []string{TypeStudent, TypeFaculty}

type Profile struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	UserType     string    `json:"user_type"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (p *Profile) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return nil
}

func (p *Profile) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(pwd))
}

func (p *Profile) IsFaculty() bool { return p.UserType == TypeFaculty }
func (p *Profile) IsStudent() bool { return p.UserType == TypeStudent }

// Person returns the log identity of the profile.
func (p Profile) Person() core.Person {
	return core.Person{ID: p.ID, Name: p.FullName, Email: p.Email}
}

// NewProfile contains information needed to create a new Profile.
type NewProfile struct {
	FullName        string `json:"full_name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	UserType        string `json:"-" validate:"omitempty,oneof=student faculty"`
}

func (np *NewProfile) Clean() {
	np.FullName = core.CleanString(np.FullName)
	np.Email = core.CleanString(np.Email, true /* lower */)
	if np.UserType == "" {
		np.UserType = TypeStudent
	}
}

func (np *NewProfile) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	np.Clean()
	if err := validate.Struct(np); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, np.Email)
}

// SetPassword is used by the admin tooling to replace a password.
type SetPassword struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"-"`
	Password string `json:"password" validate:"required"`
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search   string `query:"search"`
	UserType string `query:"user_type"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.UserType = core.CleanString(qf.UserType, true /* lower */)
}

// OrderingFields maps the API ordering fields to their columns.
var OrderingFields = map[string]string{
	"full_name":  "full_name",
	"email":      "email",
	"user_type":  "user_type",
	"created_at": "created_at",
}
