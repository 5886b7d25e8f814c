package services

import (
	"context"
	"errors"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// ComplaintStatusService applies administrator triage: status moves and replies.
// The two never touch each other's fields.
type ComplaintStatusService struct {
	complaints repositories.ComplaintRepository
	search     repositories.ComplaintSearchRepository
	events     providers.EventBus
	now        func() time.Time
}

// NewComplaintStatusService creates a triage service. search and events may be nil.
func NewComplaintStatusService(
	complaints repositories.ComplaintRepository,
	search repositories.ComplaintSearchRepository,
	events providers.EventBus,
) *ComplaintStatusService {
	return &ComplaintStatusService{
		complaints: complaints,
		search:     search,
		events:     events,
		now:        time.Now,
	}
}

// ChangeStatus moves a complaint to status, accepted in any casing or separator style
func (s *ComplaintStatusService) ChangeStatus(ctx context.Context, complaintID, status string) error {
	next, ok := entities.ParseComplaintStatus(status)
	if !ok {
		return apperrors.NewValidationError("unknown complaint status: " + status)
	}

	now := s.now().UTC()
	if err := s.complaints.UpdateStatus(ctx, complaintID, next, now); err != nil {
		return asStorageError(err, "failed to update complaint status")
	}

	observability.LoggerFromContext(ctx).Info().
		Str("complaint_id", complaintID).
		Str("status", string(next)).
		Msg("Complaint status changed")

	if s.events == nil && s.search == nil {
		return nil
	}

	// The event carries the title and author, so reload after the write.
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("complaint_id", complaintID).
			Msg("Failed to reload complaint after status change")
		return nil
	}
	indexComplaint(ctx, s.search, complaint)
	publishComplaintEvent(ctx, s.events, entities.NewComplaintEvent(complaint, entities.ComplaintEventStatusChanged, now))
	return nil
}

// AddResponse appends an administrator reply to the complaint's response log
func (s *ComplaintStatusService) AddResponse(ctx context.Context, complaintID, text string) error {
	// Reject blank replies before touching storage.
	if _, err := (entities.ResponseLog{}).Append(text, time.Time{}); err != nil {
		return apperrors.NewValidationError("response text is required")
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return asStorageError(err, "failed to load complaint")
	}

	now := s.now().UTC()
	updated, err := complaint.Responses().Append(text, now)
	if err != nil {
		if errors.Is(err, entities.ErrEmptyResponse) {
			return apperrors.NewValidationError("response text is required")
		}
		return apperrors.NewInternalError("failed to append response", err)
	}

	if err := s.complaints.UpdateResponseLog(ctx, complaintID, updated.Serialize(), now); err != nil {
		return asStorageError(err, "failed to save response")
	}

	observability.LoggerFromContext(ctx).Info().
		Str("complaint_id", complaintID).
		Int("responses", updated.Len()).
		Msg("Complaint response added")

	complaint.UpdatedAt = now
	publishComplaintEvent(ctx, s.events, entities.NewComplaintEvent(complaint, entities.ComplaintEventResponded, now))
	return nil
}
