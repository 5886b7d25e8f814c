package services

import (
	"context"
	"strings"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
	"github.com/campusvoice/portal/backend/pkg/retry"
)

// SubmitRatingInput carries one student's rating of a feedback post
type SubmitRatingInput struct {
	PostID     string
	AuthorID   string
	AuthorName string
	Score      int
	Comment    string
}

// RatingService upserts ratings into a post's shared rating set
type RatingService struct {
	posts       repositories.FeedbackPostRepository
	maxAttempts int
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewRatingService creates a rating service. maxAttempts bounds how often a
// submission is replayed after losing an optimistic-concurrency race.
func NewRatingService(posts repositories.FeedbackPostRepository, maxAttempts int) *RatingService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RatingService{
		posts:       posts,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// WithMetrics enables conflict counting
func (s *RatingService) WithMetrics(metrics *observability.Metrics) *RatingService {
	s.metrics = metrics
	return s
}

// Submit records the author's rating, replacing any earlier one, and returns
// the recomputed aggregate. Ratings and aggregate are written in one call.
func (s *RatingService) Submit(ctx context.Context, input SubmitRatingInput) (entities.RatingAggregate, error) {
	if !entities.ValidScore(input.Score) {
		return entities.RatingAggregate{}, apperrors.NewValidationError("score out of range")
	}
	if strings.TrimSpace(input.AuthorID) == "" {
		return entities.RatingAggregate{}, apperrors.NewValidationError("author is required")
	}

	logger := observability.LoggerFromContext(ctx)
	var aggregate entities.RatingAggregate

	attempt := func() error {
		post, err := s.posts.GetByID(ctx, input.PostID)
		if err != nil {
			return asStorageError(err, "failed to load feedback post")
		}

		ratings := entities.UpsertRating(post.Ratings, entities.Rating{
			AuthorID:    input.AuthorID,
			AuthorName:  input.AuthorName,
			Score:       input.Score,
			Comment:     strings.TrimSpace(input.Comment),
			SubmittedAt: s.now().UTC(),
		})
		next := entities.ComputeRatingAggregate(ratings)

		if err := s.posts.UpdateRatings(ctx, post.ID, ratings, next, post.Version); err != nil {
			return asStorageError(err, "failed to save rating")
		}
		aggregate = next
		return nil
	}

	cfg := retry.ConflictConfig(s.maxAttempts, func(err error) bool {
		return apperrors.Is(err, apperrors.ErrorTypeConflict)
	})
	err := retry.DoWithLog(ctx, cfg, "rating", attempt, func(n int, err error, delay time.Duration) {
		observability.RecordRatingConflict(ctx, s.metrics)
		logger.Debug().Str("post_id", input.PostID).Int("attempt", n).Dur("retry_in", delay).Msg("Rating write lost a race, retrying")
	})
	if err != nil {
		// a conflict that outlived every attempt is a storage failure to callers
		if t := apperrors.TypeOf(err); t == "" || t == apperrors.ErrorTypeConflict {
			return entities.RatingAggregate{}, apperrors.NewStorageError("failed to save rating", err)
		}
		return entities.RatingAggregate{}, err
	}

	logger.Info().
		Str("post_id", input.PostID).
		Str("author_id", input.AuthorID).
		Int("score", input.Score).
		Int("count", aggregate.Count).
		Msg("Rating recorded")
	return aggregate, nil
}

// GetAuthorRating returns the author's current rating of a post, or nil
func (s *RatingService) GetAuthorRating(ctx context.Context, postID, authorID string) (*entities.Rating, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, asStorageError(err, "failed to load feedback post")
	}
	rating, ok := post.RatingBy(authorID)
	if !ok {
		return nil, nil
	}
	return &rating, nil
}

// asStorageError keeps typed application errors and wraps anything else
func asStorageError(err error, message string) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}
	return apperrors.NewStorageError(message, err)
}
