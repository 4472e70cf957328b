package inmemdb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/profile"
)

var profileFields = map[string]compareFunc[profile.Profile]{
	"full_name":  func(a, b profile.Profile) int { return strings.Compare(a.FullName, b.FullName) },
	"email":      func(a, b profile.Profile) int { return strings.Compare(a.Email, b.Email) },
	"user_type":  func(a, b profile.Profile) int { return strings.Compare(a.UserType, b.UserType) },
	"created_at": func(a, b profile.Profile) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type profileRepository struct {
	db *DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) CheckEmailUniqueness(_ context.Context, email string, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, p := range repo.db.profiles {
		if p.Email == email {
			return profile.ErrEmailExists
		}
	}
	return nil
}

func (repo *profileRepository) CreateProfile(_ context.Context, p profile.Profile, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, existing := range repo.db.profiles {
		if existing.Email == p.Email {
			return profile.Profile{}, profile.ErrEmailExists
		}
	}
	p.ID = uuid.New().String()
	repo.db.profiles = append(repo.db.profiles, p)
	return p, nil
}

func (repo *profileRepository) QueryProfiles(
	_ context.Context,
	filter *profile.QueryFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]profile.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	profiles := make([]profile.Profile, 0, len(repo.db.profiles))
	for _, p := range repo.db.profiles {
		if filter != nil {
			if filter.Search != "" && !(containsFold(p.FullName, filter.Search) || containsFold(p.Email, filter.Search)) {
				continue
			}
			if filter.UserType != "" && p.UserType != filter.UserType {
				continue
			}
		}
		profiles = append(profiles, p)
	}
	sortBy(profiles, ordering, profileFields)
	return profiles, nil
}

func (repo *profileRepository) GetProfile(_ context.Context, filter profile.GetFilter, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, p := range repo.db.profiles {
		if (filter.ID != "" && p.ID == filter.ID) || (filter.ID == "" && filter.Email != "" && p.Email == filter.Email) {
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpdateProfile(_ context.Context, p profile.Profile, _ ...core.DBExecutor) (profile.Profile, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for i, existing := range repo.db.profiles {
		if existing.ID == p.ID {
			repo.db.profiles[i] = p
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}
