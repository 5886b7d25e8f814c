package repositories

import (
	"context"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// ComplaintRepository defines the interface for complaint data operations
type ComplaintRepository interface {
	// Create creates a new complaint
	Create(ctx context.Context, complaint *entities.Complaint) error

	// GetByID retrieves a complaint by ID
	GetByID(ctx context.Context, id string) (*entities.Complaint, error)

	// GetByIDs retrieves complaints by ID, skipping unknown ones
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Complaint, error)

	// List retrieves complaints matching filter, newest first
	List(ctx context.Context, filter ComplaintFilter) ([]*entities.Complaint, error)

	// UpdateStatus writes only the status and updated_at columns
	UpdateStatus(ctx context.Context, id string, status entities.ComplaintStatus, updatedAt time.Time) error

	// UpdateResponseLog writes only the response log and updated_at columns
	UpdateResponseLog(ctx context.Context, id string, responseLog string, updatedAt time.Time) error
}

// ComplaintSearchRepository defines the interface for complaint full-text search (e.g. Typesense)
type ComplaintSearchRepository interface {
	// Index upserts a complaint document
	Index(ctx context.Context, complaint *entities.Complaint) error

	// Search returns matching complaint IDs, best match first
	Search(ctx context.Context, filter ComplaintFilter) ([]string, error)

	// Delete removes a complaint from the index
	Delete(ctx context.Context, id string) error
}

// ComplaintFilter defines filters for listing complaints
type ComplaintFilter struct {
	Status       entities.ComplaintStatus
	AuthorID     string
	Query        string
	UpdatedSince *time.Time
	Limit        int
	Offset       int
}
