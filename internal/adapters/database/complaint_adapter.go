package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

const complaintsTable = "complaints"

var complaintColumns = []interface{}{
	"id", "title", "category", "description", "author_id", "author_name",
	"author_external_id", "status", "response_log", "created_at", "updated_at",
}

// ComplaintAdapter implements the ComplaintRepository interface
type ComplaintAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewComplaintAdapter creates a new complaint adapter
func NewComplaintAdapter(client *postgres.Client) repositories.ComplaintRepository {
	return &ComplaintAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new complaint
func (a *ComplaintAdapter) Create(ctx context.Context, complaint *entities.Complaint) error {
	record := goqu.Record{
		"id":                 complaint.ID,
		"title":              complaint.Title,
		"category":           complaint.Category,
		"description":        complaint.Description,
		"author_id":          complaint.AuthorID,
		"author_name":        complaint.AuthorName,
		"author_external_id": sql.NullString{String: complaint.AuthorExternalID, Valid: complaint.AuthorExternalID != ""},
		"status":             string(complaint.Status),
		"response_log":       nullableString(complaint.ResponseLog),
		"created_at":         complaint.CreatedAt,
		"updated_at":         complaint.UpdatedAt,
	}

	query, args, err := a.db.Insert(complaintsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("failed to create complaint", err)
	}
	return nil
}

// GetByID retrieves a complaint by ID
func (a *ComplaintAdapter) GetByID(ctx context.Context, id string) (*entities.Complaint, error) {
	query, args, err := a.db.Select(complaintColumns...).
		From(complaintsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	complaint, err := scanComplaint(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("complaint with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get complaint", err)
	}
	return complaint, nil
}

// GetByIDs retrieves complaints by ID in the order given, skipping unknown ones
func (a *ComplaintAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Complaint, error) {
	if len(ids) == 0 {
		return []*entities.Complaint{}, nil
	}

	found, err := a.query(ctx, a.db.Select(complaintColumns...).
		From(complaintsTable).
		Where(goqu.Ex{"id": ids}))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Complaint, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	ordered := make([]*entities.Complaint, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// List retrieves complaints with filters, newest first
func (a *ComplaintAdapter) List(ctx context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error) {
	ds := a.db.Select(complaintColumns...).
		From(complaintsTable).
		Order(goqu.C("created_at").Desc())

	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.AuthorID != "" {
		ds = ds.Where(goqu.C("author_id").Eq(filter.AuthorID))
	}
	if filter.UpdatedSince != nil {
		ds = ds.Where(goqu.C("updated_at").Gte(*filter.UpdatedSince))
	}
	if filter.Query != "" {
		pattern := containsPattern(filter.Query)
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("description").ILike(pattern),
			goqu.C("category").ILike(pattern),
		))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.query(ctx, ds)
}

// UpdateStatus writes only the status and updated_at columns
func (a *ComplaintAdapter) UpdateStatus(ctx context.Context, id string, status entities.ComplaintStatus, updatedAt time.Time) error {
	return a.update(ctx, id, goqu.Record{
		"status":     string(status),
		"updated_at": updatedAt,
	})
}

// UpdateResponseLog writes only the response_log and updated_at columns
func (a *ComplaintAdapter) UpdateResponseLog(ctx context.Context, id string, responseLog string, updatedAt time.Time) error {
	return a.update(ctx, id, goqu.Record{
		"response_log": responseLog,
		"updated_at":   updatedAt,
	})
}

func (a *ComplaintAdapter) update(ctx context.Context, id string, record goqu.Record) error {
	query, args, err := a.db.Update(complaintsTable).
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to update complaint", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("complaint with id %s not found", id))
	}
	return nil
}

func (a *ComplaintAdapter) query(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Complaint, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list complaints", err)
	}
	defer rows.Close()

	complaints := make([]*entities.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan complaint", err)
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate complaints", err)
	}
	return complaints, nil
}

func scanComplaint(row rowScanner) (*entities.Complaint, error) {
	c := &entities.Complaint{}
	var status string
	var authorName, externalID, responseLog sql.NullString

	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Category,
		&c.Description,
		&c.AuthorID,
		&authorName,
		&externalID,
		&status,
		&responseLog,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.AuthorName = authorName.String
	c.AuthorExternalID = externalID.String
	c.Status = entities.ComplaintStatus(status)
	if responseLog.Valid {
		c.ResponseLog = &responseLog.String
	}
	return c, nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// likeEscaper escapes the ILIKE wildcards with Postgres' default escape character
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text anywhere, treating % and _ in it literally
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}
