package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// CreateFeedbackPostInput describes a new broadcast feedback request
type CreateFeedbackPostInput struct {
	Title        string
	Category     string
	Content      string
	Audience     entities.Audience
	RecipientIDs []string
	AuthorID     string
	AuthorName   string
}

// FeedbackPostService manages broadcast feedback requests
type FeedbackPostService struct {
	posts repositories.FeedbackPostRepository
	now   func() time.Time
}

// NewFeedbackPostService creates a new feedback post service
func NewFeedbackPostService(posts repositories.FeedbackPostRepository) *FeedbackPostService {
	return &FeedbackPostService{posts: posts, now: time.Now}
}

// Create stores a post with an empty rating set and zeroed aggregate
func (s *FeedbackPostService) Create(ctx context.Context, input CreateFeedbackPostInput) (*entities.FeedbackPost, error) {
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, apperrors.NewValidationError("category is required")
	}

	audience := input.Audience
	if audience == "" {
		audience = entities.AudienceAll
	}

	recipients := dedupe(input.RecipientIDs)
	if audience == entities.AudienceSpecific && len(recipients) == 0 {
		return nil, apperrors.NewValidationError("specific audience needs at least one recipient")
	}
	if audience == entities.AudienceAll {
		recipients = nil
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = entities.DefaultPostTitle(category)
	}

	now := s.now().UTC()
	post := &entities.FeedbackPost{
		ID:           uuid.New().String(),
		Title:        title,
		Category:     category,
		Content:      strings.TrimSpace(input.Content),
		Audience:     audience,
		RecipientIDs: recipients,
		AuthorID:     input.AuthorID,
		AuthorName:   input.AuthorName,
		Ratings:      []entities.Rating{},
		Aggregate:    entities.EmptyRatingAggregate(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, asStorageError(err, "failed to create feedback post")
	}

	observability.LoggerFromContext(ctx).Info().
		Str("post_id", post.ID).
		Str("audience", string(post.Audience)).
		Int("recipients", len(post.RecipientIDs)).
		Msg("Feedback post created")
	return post, nil
}

// Get retrieves a post by ID
func (s *FeedbackPostService) Get(ctx context.Context, id string) (*entities.FeedbackPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, asStorageError(err, "failed to load feedback post")
	}
	return post, nil
}

// GetForRecipient retrieves a post only if recipientID is in its audience
func (s *FeedbackPostService) GetForRecipient(ctx context.Context, id, recipientID string) (*entities.FeedbackPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsVisibleTo(recipientID) {
		return nil, apperrors.NewNotFoundError("feedback post not found")
	}
	return post, nil
}

// List retrieves every post, newest first
func (s *FeedbackPostService) List(ctx context.Context, limit, offset int) ([]*entities.FeedbackPost, error) {
	posts, err := s.posts.List(ctx, repositories.FeedbackPostFilter{Limit: limit, Offset: offset})
	if err != nil {
		return nil, asStorageError(err, "failed to list feedback posts")
	}
	return posts, nil
}

// ListVisibleTo retrieves the posts addressed to recipientID, newest first
func (s *FeedbackPostService) ListVisibleTo(ctx context.Context, recipientID string) ([]*entities.FeedbackPost, error) {
	posts, err := s.posts.ListVisibleTo(ctx, recipientID, repositories.FeedbackPostFilter{})
	if err != nil {
		return nil, asStorageError(err, "failed to list feedback posts")
	}
	return posts, nil
}

// Delete removes a post
func (s *FeedbackPostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return asStorageError(err, "failed to delete feedback post")
	}
	observability.LoggerFromContext(ctx).Info().Str("post_id", id).Msg("Feedback post deleted")
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
