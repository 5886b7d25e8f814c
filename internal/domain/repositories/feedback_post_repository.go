package repositories

import (
	"context"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// FeedbackPostRepository defines the interface for feedback post data operations
type FeedbackPostRepository interface {
	// Create stores a new post with its empty rating set
	Create(ctx context.Context, post *entities.FeedbackPost) error

	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, id string) (*entities.FeedbackPost, error)

	// List retrieves posts newest first
	List(ctx context.Context, filter FeedbackPostFilter) ([]*entities.FeedbackPost, error)

	// ListVisibleTo retrieves the posts whose audience includes recipientID, newest first
	ListVisibleTo(ctx context.Context, recipientID string, filter FeedbackPostFilter) ([]*entities.FeedbackPost, error)

	// UpdateRatings replaces the rating set and aggregate in one write.
	// The write only applies while the stored version equals expectedVersion;
	// otherwise a CONFLICT error is returned. The version is incremented on success.
	UpdateRatings(ctx context.Context, id string, ratings []entities.Rating, aggregate entities.RatingAggregate, expectedVersion int64) error

	// Delete deletes a post
	Delete(ctx context.Context, id string) error
}

// FeedbackPostFilter defines filters for listing posts
type FeedbackPostFilter struct {
	CreatedSince *time.Time
	Limit        int
	Offset       int
}
