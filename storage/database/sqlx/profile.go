package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/profile"
)

const profileColumns = "id, full_name, email, user_type, password_hash, is_active, created_at, updated_at, last_login"

type profileRow struct {
	ID           string     `db:"id"`
	FullName     string     `db:"full_name"`
	Email        string     `db:"email"`
	UserType     string     `db:"user_type"`
	PasswordHash null.Bytes `db:"password_hash"`
	IsActive     bool       `db:"is_active"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLogin    null.Time  `db:"last_login"`
}

func toProfileRow(p profile.Profile) profileRow {
	return profileRow{
		ID:           p.ID,
		FullName:     p.FullName,
		Email:        p.Email,
		UserType:     p.UserType,
		PasswordHash: null.NewBytes(p.PasswordHash, p.PasswordHash != nil),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt.UTC(),
		UpdatedAt:    p.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(p.LastLogin.UTC(), !p.LastLogin.IsZero()),
	}
}

func (row profileRow) profile() profile.Profile {
	return profile.Profile{
		ID:           row.ID,
		FullName:     row.FullName,
		Email:        row.Email,
		UserType:     row.UserType,
		PasswordHash: row.PasswordHash.Bytes,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

type profileRepository struct {
	repository
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(exec core.DBExecutor) profile.Repository {
	return &profileRepository{repository{exec: exec}}
}

func (repo *profileRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var found bool
	err := sqlx.GetContext(ctx, repo.getExec(exec), &found, "SELECT EXISTS (SELECT 1 FROM profiles WHERE email = $1)", email)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if found {
		return profile.ErrEmailExists
	}
	return nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, p profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	p.ID = uuid.New().String()
	q := "INSERT INTO profiles (" + profileColumns + ") VALUES " +
		"(:id, :full_name, :email, :user_type, :password_hash, :is_active, :created_at, :updated_at, :last_login)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toProfileRow(p)); err != nil {
		if isUniqueViolation(err) {
			return profile.Profile{}, profile.ErrEmailExists
		}
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return p, nil
}

func (repo *profileRepository) QueryProfiles(
	ctx context.Context,
	filter *profile.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]profile.Profile, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			where = append(where, "(full_name ILIKE ? OR email ILIKE ?)")
			val := likePattern(filter.Search)
			args = append(args, val, val)
		}
		if filter.UserType != "" {
			where = append(where, "user_type = ?")
			args = append(args, filter.UserType)
		}
	}

	q := "SELECT " + profileColumns + " FROM profiles"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(ordering)

	var rows []profileRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profiles := make([]profile.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.profile())
	}
	return profiles, nil
}

func (repo *profileRepository) GetProfile(ctx context.Context, filter profile.GetFilter, exec ...core.DBExecutor) (profile.Profile, error) {
	var (
		q   = "SELECT " + profileColumns + " FROM profiles WHERE "
		arg string
	)
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return profile.Profile{}, profile.ErrNotFound
		}
		q += "id = $1"
		arg = filter.ID
	case filter.Email != "":
		q += "email = $1"
		arg = filter.Email
	default:
		return profile.Profile{}, profile.ErrNotFound
	}

	var row profileRow
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, arg); err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound, "finding profile")
	}
	return row.profile(), nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, p profile.Profile, exec ...core.DBExecutor) (profile.Profile, error) {
	q := `UPDATE profiles SET full_name = :full_name, email = :email, user_type = :user_type,
		password_hash = :password_hash, is_active = :is_active, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toProfileRow(p))
	if err != nil {
		if isUniqueViolation(err) {
			return profile.Profile{}, profile.ErrEmailExists
		}
		return profile.Profile{}, errors.Wrap(err, "updating profile")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}
