package collegedata

import (
	"context"
	"errors"
	"time"

	"github.com/campusbuddy/helpdesk/core"
)

var ErrNotFound = errors.New("college data not found")

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		// QueryRecords applies AND operation on the available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Record.Title, Record.Content or a tag.
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
		GetRecord(ctx context.Context, id string, exec ...core.DBExecutor) (Record, error)
		UpdateDocument(ctx context.Context, id string, doc Document, updatedAt time.Time, exec ...core.DBExecutor) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nr NewRecord, createdBy string) (Record, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error)
		GetByID(ctx context.Context, id string) (Record, error)
		Delete(ctx context.Context, ids ...string) (int, error)
		AttachDocument(ctx context.Context, id string, doc Document) (Record, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nr NewRecord, createdBy string) (Record, error) {
	now := time.Now().UTC()
	return svc.repo.CreateRecord(ctx, Record{
		Title:     nr.Title,
		Category:  nr.Category,
		Content:   nr.Content,
		Tags:      ParseTags(nr.Tags),
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	if filter != nil {
		filter.Clean()
	}
	ordering = core.SanitizeOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *service) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return svc.repo.DeleteRecordsByID(ctx, ids)
}

// AttachDocument replaces the file fields of the record.
func (svc *service) AttachDocument(ctx context.Context, id string, doc Document) (Record, error) {
	return svc.repo.UpdateDocument(ctx, id, doc, time.Now().UTC())
}
