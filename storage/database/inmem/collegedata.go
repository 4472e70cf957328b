package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
)

var recordFields = map[string]compareFunc[collegedata.Record]{
	"title":      func(a, b collegedata.Record) int { return strings.Compare(a.Title, b.Title) },
	"category":   func(a, b collegedata.Record) int { return strings.Compare(a.Category, b.Category) },
	"created_at": func(a, b collegedata.Record) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updated_at": func(a, b collegedata.Record) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

type collegeDataRepository struct {
	db *DB
}

var _ collegedata.Repository = (*collegeDataRepository)(nil) // interface compliance check

func NewCollegeDataRepository(db *DB) collegedata.Repository {
	return &collegeDataRepository{db: db}
}

func (repo *collegeDataRepository) CreateRecord(_ context.Context, rec collegedata.Record, _ ...core.DBExecutor) (collegedata.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	rec.ID = uuid.New().String()
	repo.db.records = append(repo.db.records, rec)
	return rec, nil
}

func (repo *collegeDataRepository) QueryRecords(
	_ context.Context,
	filter *collegedata.QueryFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]collegedata.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]collegedata.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		if filter != nil {
			if filter.Search != "" && !recordMatches(rec, filter.Search) {
				continue
			}
			if filter.Category != "" && rec.Category != filter.Category {
				continue
			}
		}
		records = append(records, rec)
	}
	sortBy(records, ordering, recordFields)
	return records, nil
}

func recordMatches(rec collegedata.Record, search string) bool {
	if containsFold(rec.Title, search) || containsFold(rec.Content, search) {
		return true
	}
	for _, tag := range rec.Tags {
		if containsFold(tag, search) {
			return true
		}
	}
	return false
}

func (repo *collegeDataRepository) GetRecord(_ context.Context, id string, _ ...core.DBExecutor) (collegedata.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, rec := range repo.db.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return collegedata.Record{}, collegedata.ErrNotFound
}

func (repo *collegeDataRepository) UpdateDocument(
	_ context.Context,
	id string,
	doc collegedata.Document,
	updatedAt time.Time,
	_ ...core.DBExecutor,
) (collegedata.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for i, rec := range repo.db.records {
		if rec.ID == id {
			rec.FileURL = doc.FileURL
			rec.FileName = doc.FileName
			rec.FileType = doc.FileType
			rec.ParsedContent = doc.ParsedContent
			rec.UpdatedAt = updatedAt
			repo.db.records[i] = rec
			return rec, nil
		}
	}
	return collegedata.Record{}, collegedata.ErrNotFound
}

func (repo *collegeDataRepository) DeleteRecordsByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	del := make(map[string]bool, len(ids))
	for _, id := range ids {
		del[id] = true
	}
	kept := repo.db.records[:0]
	for _, rec := range repo.db.records {
		if !del[rec.ID] {
			kept = append(kept, rec)
		}
	}
	cnt := len(repo.db.records) - len(kept)
	repo.db.records = kept
	return cnt, nil
}
