package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

const feedbackPostsTable = "feedback_posts"

var feedbackPostColumns = []interface{}{
	"id", "title", "category", "content", "audience", "recipient_ids",
	"author_id", "author_name", "ratings", "aggregate", "version",
	"created_at", "updated_at",
}

// FeedbackPostAdapter implements the FeedbackPostRepository interface
type FeedbackPostAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFeedbackPostAdapter creates a new feedback post adapter
func NewFeedbackPostAdapter(client *postgres.Client) repositories.FeedbackPostRepository {
	return &FeedbackPostAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a post together with its (normally empty) rating set
func (a *FeedbackPostAdapter) Create(ctx context.Context, post *entities.FeedbackPost) error {
	if post == nil {
		return apperrors.NewInternalError("feedback post is nil", fmt.Errorf("feedback post is nil"))
	}

	recipients, ratings, aggregate, err := encodePostJSON(post.RecipientIDs, post.Ratings, post.Aggregate)
	if err != nil {
		return apperrors.NewInternalError("failed to encode feedback post", err)
	}

	record := goqu.Record{
		"id":            post.ID,
		"title":         post.Title,
		"category":      post.Category,
		"content":       post.Content,
		"audience":      string(post.Audience),
		"recipient_ids": recipients,
		"author_id":     post.AuthorID,
		"author_name":   post.AuthorName,
		"ratings":       ratings,
		"aggregate":     aggregate,
		"version":       post.Version,
		"created_at":    post.CreatedAt,
		"updated_at":    post.UpdatedAt,
	}

	query, args, err := a.db.Insert(feedbackPostsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("failed to create feedback post", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (a *FeedbackPostAdapter) GetByID(ctx context.Context, id string) (*entities.FeedbackPost, error) {
	query, args, err := a.db.Select(feedbackPostColumns...).
		From(feedbackPostsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	post, err := scanFeedbackPost(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to get feedback post", err)
	}
	return post, nil
}

// List retrieves posts newest first
func (a *FeedbackPostAdapter) List(ctx context.Context, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	return a.list(ctx, a.baseListQuery(filter))
}

// ListVisibleTo retrieves posts addressed to everyone or explicitly to recipientID
func (a *FeedbackPostAdapter) ListVisibleTo(ctx context.Context, recipientID string, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	member, err := json.Marshal([]string{recipientID})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode recipient", err)
	}

	ds := a.baseListQuery(filter).Where(goqu.Or(
		goqu.C("audience").Eq(string(entities.AudienceAll)),
		goqu.L("recipient_ids @> ?::jsonb", string(member)),
	))
	return a.list(ctx, ds)
}

// UpdateRatings writes ratings and aggregate in one statement guarded by the version token
func (a *FeedbackPostAdapter) UpdateRatings(ctx context.Context, id string, ratings []entities.Rating, aggregate entities.RatingAggregate, expectedVersion int64) error {
	_, ratingsJSON, aggregateJSON, err := encodePostJSON(nil, ratings, aggregate)
	if err != nil {
		return apperrors.NewInternalError("failed to encode ratings", err)
	}

	query, args, err := a.db.Update(feedbackPostsTable).
		Set(goqu.Record{
			"ratings":    ratingsJSON,
			"aggregate":  aggregateJSON,
			"version":    goqu.L("version + 1"),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id, "version": expectedVersion}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to update ratings", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the post is gone or another writer got there first.
	exists, err := a.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	return apperrors.NewConflictError(fmt.Sprintf("feedback post %s changed since version %d", id, expectedVersion))
}

// Delete deletes a post
func (a *FeedbackPostAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(feedbackPostsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to delete feedback post", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	return nil
}

func (a *FeedbackPostAdapter) baseListQuery(filter repositories.FeedbackPostFilter) *goqu.SelectDataset {
	ds := a.db.Select(feedbackPostColumns...).
		From(feedbackPostsTable).
		Order(goqu.C("created_at").Desc())

	if filter.CreatedSince != nil {
		ds = ds.Where(goqu.C("created_at").Gte(*filter.CreatedSince))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}
	return ds
}

func (a *FeedbackPostAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.FeedbackPost, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list feedback posts", err)
	}
	defer rows.Close()

	posts := make([]*entities.FeedbackPost, 0)
	for rows.Next() {
		post, err := scanFeedbackPost(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan feedback post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate feedback posts", err)
	}
	return posts, nil
}

func (a *FeedbackPostAdapter) exists(ctx context.Context, id string) (bool, error) {
	query, args, err := a.db.Select(goqu.L("1")).From(feedbackPostsTable).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var one int
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewStorageError("failed to check feedback post", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedbackPost(row rowScanner) (*entities.FeedbackPost, error) {
	post := &entities.FeedbackPost{}
	var audience string
	var content, authorName sql.NullString
	var recipients, ratings, aggregate []byte

	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Category,
		&content,
		&audience,
		&recipients,
		&post.AuthorID,
		&authorName,
		&ratings,
		&aggregate,
		&post.Version,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Content = content.String
	post.AuthorName = authorName.String
	post.Audience = entities.Audience(audience)

	if err := decodeJSONColumn(recipients, &post.RecipientIDs); err != nil {
		return nil, fmt.Errorf("recipient_ids: %w", err)
	}
	if err := decodeJSONColumn(ratings, &post.Ratings); err != nil {
		return nil, fmt.Errorf("ratings: %w", err)
	}
	if err := decodeJSONColumn(aggregate, &post.Aggregate); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if post.Aggregate.Histogram == nil {
		post.Aggregate = entities.ComputeRatingAggregate(post.Ratings)
	}
	return post, nil
}

func encodePostJSON(recipients []string, ratings []entities.Rating, aggregate entities.RatingAggregate) (string, string, string, error) {
	if recipients == nil {
		recipients = []string{}
	}
	if ratings == nil {
		ratings = []entities.Rating{}
	}
	if aggregate.Histogram == nil {
		aggregate = entities.ComputeRatingAggregate(ratings)
	}

	r, err := json.Marshal(recipients)
	if err != nil {
		return "", "", "", err
	}
	rt, err := json.Marshal(ratings)
	if err != nil {
		return "", "", "", err
	}
	ag, err := json.Marshal(aggregate)
	if err != nil {
		return "", "", "", err
	}
	return string(r), string(rt), string(ag), nil
}

func decodeJSONColumn(raw []byte, dest interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
