package profile

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
)

var (
	// errors
	ErrNotFound    = errors.New("profile not found")
	ErrEmailExists = errors.New("a profile with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) (Profile, error)
		// QueryProfiles applies AND operation on the available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Profile.FullName or Profile.Email.
		QueryProfiles(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Profile, error)
		GetProfile(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Profile, error)
		UpdateProfile(ctx context.Context, p Profile, exec ...core.DBExecutor) (Profile, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		Create(ctx context.Context, np NewProfile) (Profile, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error)
		GetByID(ctx context.Context, id string) (Profile, error)
		GetByEmail(ctx context.Context, email string) (Profile, error)
		SetLastLogin(ctx context.Context, p Profile) (Profile, error)
		EnsureFaculty(ctx context.Context, email, name, pwd string) (Profile, bool, error)
		ResetPassword(ctx context.Context, email, pwd string) error
	}

	service struct {
		repo     Repository
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate) Service {
	return &service{repo: repo, validate: validate}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if pkgerrors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, np NewProfile) (Profile, error) {
	np.Clean()
	now := time.Now().UTC()
	p := Profile{
		FullName:  np.FullName,
		Email:     np.Email,
		UserType:  np.UserType,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.SetPassword(np.Password); err != nil {
		return Profile{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateProfile(ctx, p)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryProfiles(ctx, filter, core.SanitizeOrdering(ordering, OrderingFields))
}

func (svc *service) GetByID(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Profile, error) {
	return svc.repo.GetProfile(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) SetLastLogin(ctx context.Context, p Profile) (Profile, error) {
	p.LastLogin = time.Now().UTC()
	return svc.repo.UpdateProfile(ctx, p)
}

// EnsureFaculty creates the faculty profile unless a profile with this email already exists.
// The returned bool reports whether it was created. An existing profile is left untouched.
func (svc *service) EnsureFaculty(ctx context.Context, email, name, pwd string) (Profile, bool, error) {
	p, err := svc.GetByEmail(ctx, email)
	if err == nil {
		return p, false, nil
	}
	if pkgerrors.Cause(err) != ErrNotFound {
		return Profile{}, false, pkgerrors.Wrap(err, "finding faculty by email")
	}

	np := NewProfile{
		FullName:        name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		UserType:        TypeFaculty,
	}
	if err = np.Validate(ctx, svc.validate, svc); err != nil {
		return Profile{}, false, err
	}
	if p, err = svc.Create(ctx, np); err != nil {
		return Profile{}, false, pkgerrors.Wrap(err, "creating faculty")
	}
	return p, true, nil
}

func (svc *service) ResetPassword(ctx context.Context, email, pwd string) error {
	p, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = svc.validate.Struct(SetPassword{Email: p.Email, FullName: p.FullName, Password: pwd}); err != nil {
		return err
	}
	if err = p.SetPassword(pwd); err != nil {
		return pkgerrors.Wrap(err, "hashing password")
	}
	p.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateProfile(ctx, p)
	return err
}
