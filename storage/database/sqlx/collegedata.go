package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
)

const recordColumns = "id, title, category, content, tags, file_url, file_name, file_type, parsed_content, " +
	"created_by, created_at, updated_at"

type recordRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Category      string         `db:"category"`
	Content       string         `db:"content"`
	Tags          pq.StringArray `db:"tags"`
	FileURL       null.String    `db:"file_url"`
	FileName      null.String    `db:"file_name"`
	FileType      null.String    `db:"file_type"`
	ParsedContent null.String    `db:"parsed_content"`
	CreatedBy     null.String    `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func toRecordRow(rec collegedata.Record) recordRow {
	return recordRow{
		ID:            rec.ID,
		Title:         rec.Title,
		Category:      rec.Category,
		Content:       rec.Content,
		Tags:          pq.StringArray(rec.Tags),
		FileURL:       null.NewString(rec.FileURL, rec.FileURL != ""),
		FileName:      null.NewString(rec.FileName, rec.FileName != ""),
		FileType:      null.NewString(rec.FileType, rec.FileType != ""),
		ParsedContent: null.NewString(rec.ParsedContent, rec.ParsedContent != ""),
		CreatedBy:     null.NewString(rec.CreatedBy, rec.CreatedBy != ""),
		CreatedAt:     rec.CreatedAt.UTC(),
		UpdatedAt:     rec.UpdatedAt.UTC(),
	}
}

func (row recordRow) record() collegedata.Record {
	var tags []string
	if len(row.Tags) > 0 {
		tags = []string(row.Tags)
	}
	return collegedata.Record{
		ID:            row.ID,
		Title:         row.Title,
		Category:      row.Category,
		Content:       row.Content,
		Tags:          tags,
		FileURL:       row.FileURL.String,
		FileName:      row.FileName.String,
		FileType:      row.FileType.String,
		ParsedContent: row.ParsedContent.String,
		CreatedBy:     row.CreatedBy.String,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

type collegeDataRepository struct {
	repository
}

var _ collegedata.Repository = (*collegeDataRepository)(nil) // interface compliance check

func NewCollegeDataRepository(exec core.DBExecutor) collegedata.Repository {
	return &collegeDataRepository{repository{exec: exec}}
}

func (repo *collegeDataRepository) CreateRecord(ctx context.Context, rec collegedata.Record, exec ...core.DBExecutor) (collegedata.Record, error) {
	rec.ID = uuid.New().String()
	q := "INSERT INTO college_data (" + recordColumns + ") VALUES (:id, :title, :category, :content, :tags, " +
		":file_url, :file_name, :file_type, :parsed_content, :created_by, :created_at, :updated_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toRecordRow(rec)); err != nil {
		return collegedata.Record{}, errors.Wrap(err, "inserting college data")
	}
	return rec, nil
}

func (repo *collegeDataRepository) QueryRecords(
	ctx context.Context,
	filter *collegedata.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]collegedata.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			// title, content or any tag
			where = append(where, "(title ILIKE ? OR content ILIKE ? OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE ?))")
			val := likePattern(filter.Search)
			args = append(args, val, val, val)
		}
		if filter.Category != "" {
			where = append(where, "category = ?")
			args = append(args, filter.Category)
		}
	}

	q := "SELECT " + recordColumns + " FROM college_data"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += orderBy(ordering)

	var rows []recordRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "querying college data")
	}
	records := make([]collegedata.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (repo *collegeDataRepository) GetRecord(ctx context.Context, id string, exec ...core.DBExecutor) (collegedata.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return collegedata.Record{}, collegedata.ErrNotFound
	}
	var row recordRow
	q := "SELECT " + recordColumns + " FROM college_data WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return collegedata.Record{}, trapNoRowsErr(err, collegedata.ErrNotFound, "finding college data")
	}
	return row.record(), nil
}

func (repo *collegeDataRepository) UpdateDocument(
	ctx context.Context,
	id string,
	doc collegedata.Document,
	updatedAt time.Time,
	exec ...core.DBExecutor,
) (collegedata.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return collegedata.Record{}, collegedata.ErrNotFound
	}
	var row recordRow
	q := `UPDATE college_data SET file_url = $2, file_name = $3, file_type = $4, parsed_content = $5, updated_at = $6
		WHERE id = $1 RETURNING ` + recordColumns
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q,
		id,
		null.NewString(doc.FileURL, doc.FileURL != ""),
		null.NewString(doc.FileName, doc.FileName != ""),
		null.NewString(doc.FileType, doc.FileType != ""),
		null.NewString(doc.ParsedContent, doc.ParsedContent != ""),
		updatedAt.UTC(),
	)
	if err != nil {
		return collegedata.Record{}, trapNoRowsErr(err, collegedata.ErrNotFound, "updating college data document")
	}
	return row.record(), nil
}

func (repo *collegeDataRepository) DeleteRecordsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}
	res, err := repo.getExec(exec).ExecContext(ctx, "DELETE FROM college_data WHERE id = ANY($1)", pq.Array(valid))
	if err != nil {
		return 0, errors.Wrap(err, "deleting college data")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting college data")
	}
	return int(cnt), nil
}
