package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// CreateComplaintInput carries a student's new complaint
type CreateComplaintInput struct {
	Title            string
	Category         string
	Description      string
	AuthorID         string
	AuthorName       string
	AuthorExternalID string
}

// ComplaintService files complaints and lists them for students and administrators
type ComplaintService struct {
	complaints repositories.ComplaintRepository
	search     repositories.ComplaintSearchRepository
	events     providers.EventBus
	now        func() time.Time
}

// NewComplaintService creates a complaint service. search and events may be nil.
func NewComplaintService(
	complaints repositories.ComplaintRepository,
	search repositories.ComplaintSearchRepository,
	events providers.EventBus,
) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		search:     search,
		events:     events,
		now:        time.Now,
	}
}

// Create stores a pending complaint without any response
func (s *ComplaintService) Create(ctx context.Context, input CreateComplaintInput) (*entities.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	description := strings.TrimSpace(input.Description)
	if title == "" || category == "" || description == "" {
		return nil, apperrors.NewValidationError("title, category and description are required")
	}
	if strings.TrimSpace(input.AuthorID) == "" {
		return nil, apperrors.NewValidationError("author is required")
	}

	now := s.now().UTC()
	complaint := &entities.Complaint{
		ID:               uuid.New().String(),
		Title:            title,
		Category:         category,
		Description:      description,
		AuthorID:         input.AuthorID,
		AuthorName:       input.AuthorName,
		AuthorExternalID: input.AuthorExternalID,
		Status:           entities.ComplaintStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, asStorageError(err, "failed to create complaint")
	}

	indexComplaint(ctx, s.search, complaint)
	publishComplaintEvent(ctx, s.events, entities.NewComplaintEvent(complaint, entities.ComplaintEventCreated, now))

	observability.LoggerFromContext(ctx).Info().
		Str("complaint_id", complaint.ID).
		Str("category", complaint.Category).
		Msg("Complaint filed")
	return complaint, nil
}

// Get retrieves a complaint by ID
func (s *ComplaintService) Get(ctx context.Context, id string) (*entities.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, asStorageError(err, "failed to load complaint")
	}
	return complaint, nil
}

// GetForSession retrieves a complaint the caller owns, or any complaint for administrators
func (s *ComplaintService) GetForSession(ctx context.Context, id string, session entities.Session) (*entities.Complaint, error) {
	complaint, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && complaint.AuthorID != session.UserID {
		return nil, apperrors.NewNotFoundError("complaint not found")
	}
	return complaint, nil
}

// ListByAuthor retrieves the author's complaints, newest first
func (s *ComplaintService) ListByAuthor(ctx context.Context, authorID string) ([]*entities.Complaint, error) {
	complaints, err := s.complaints.List(ctx, repositories.ComplaintFilter{AuthorID: authorID})
	if err != nil {
		return nil, asStorageError(err, "failed to list complaints")
	}
	return complaints, nil
}

// ListForAdmin filters complaints by status and free text. Text queries go to
// the search index when one is configured and fall back to storage matching.
func (s *ComplaintService) ListForAdmin(ctx context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error) {
	filter.Query = strings.TrimSpace(filter.Query)

	if filter.Query != "" && s.search != nil {
		ids, err := s.search.Search(ctx, filter)
		if err == nil {
			complaints, err := s.complaints.GetByIDs(ctx, ids)
			if err != nil {
				return nil, asStorageError(err, "failed to load complaints")
			}
			return complaints, nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("query", filter.Query).
			Msg("Complaint search unavailable, falling back to storage")
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, asStorageError(err, "failed to list complaints")
	}
	return complaints, nil
}

// Reindex pushes every stored complaint into the search index and returns how many were indexed
func (s *ComplaintService) Reindex(ctx context.Context, batchSize int) (int, error) {
	if s.search == nil {
		return 0, apperrors.NewValidationError("complaint search is not configured")
	}
	if batchSize <= 0 {
		batchSize = BatchSize
	}

	indexed := 0
	for offset := 0; ; offset += batchSize {
		batch, err := s.complaints.List(ctx, repositories.ComplaintFilter{Limit: batchSize, Offset: offset})
		if err != nil {
			return indexed, asStorageError(err, "failed to list complaints")
		}
		for _, complaint := range batch {
			if err := s.search.Index(ctx, complaint); err != nil {
				return indexed, apperrors.NewStorageError("failed to index complaint "+complaint.ID, err)
			}
			indexed++
		}
		if len(batch) < batchSize {
			return indexed, nil
		}
	}
}

func indexComplaint(ctx context.Context, search repositories.ComplaintSearchRepository, complaint *entities.Complaint) {
	if search == nil {
		return
	}
	if err := search.Index(ctx, complaint); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("complaint_id", complaint.ID).
			Msg("Failed to index complaint")
	}
}

func publishComplaintEvent(ctx context.Context, bus providers.EventBus, event *entities.ComplaintEvent) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, providers.EventChannelComplaints, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("complaint_id", event.ComplaintID).
			Str("event_type", string(event.Type)).
			Msg("Failed to publish complaint event")
	}
}
