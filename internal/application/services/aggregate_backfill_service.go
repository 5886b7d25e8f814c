package services

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// BatchSize is the page size used when walking whole tables
const BatchSize = 100

// BackfillSummary reports the outcome of an aggregate backfill
type BackfillSummary struct {
	TotalProcessed int
	UpdatedCount   int
	UnchangedCount int
	FailureCount   int
}

// AggregateBackfillService recomputes every post's stored aggregate from its raw ratings
type AggregateBackfillService struct {
	posts       repositories.FeedbackPostRepository
	workerCount int
}

// NewAggregateBackfillService creates a backfill service with the given worker count
func NewAggregateBackfillService(posts repositories.FeedbackPostRepository, workers int) *AggregateBackfillService {
	if workers <= 0 {
		workers = 1
	}
	return &AggregateBackfillService{
		posts:       posts,
		workerCount: workers,
	}
}

// BackfillAll pages through every post and fans the recomputation out to the workers
func (s *AggregateBackfillService) BackfillAll(ctx context.Context) (*BackfillSummary, error) {
	var processed, updated, unchanged, failure int64

	postChan := make(chan *entities.FeedbackPost, BatchSize)
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range postChan {
				changed, err := s.BackfillSingle(ctx, post)
				atomic.AddInt64(&processed, 1)
				switch {
				case err != nil:
					atomic.AddInt64(&failure, 1)
					log.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to backfill aggregate")
				case changed:
					atomic.AddInt64(&updated, 1)
				default:
					atomic.AddInt64(&unchanged, 1)
				}
			}
		}()
	}

	produceErr := s.produce(ctx, postChan)
	close(postChan)
	wg.Wait()

	if produceErr != nil {
		return nil, produceErr
	}

	return &BackfillSummary{
		TotalProcessed: int(processed),
		UpdatedCount:   int(updated),
		UnchangedCount: int(unchanged),
		FailureCount:   int(failure),
	}, nil
}

func (s *AggregateBackfillService) produce(ctx context.Context, postChan chan<- *entities.FeedbackPost) error {
	for offset := 0; ; offset += BatchSize {
		posts, err := s.posts.List(ctx, repositories.FeedbackPostFilter{Limit: BatchSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("failed to list feedback posts: %w", err)
		}

		for _, post := range posts {
			select {
			case postChan <- post:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if len(posts) < BatchSize {
			return nil
		}
	}
}

// BackfillSingle rewrites one post's aggregate when it drifted from its ratings.
// A concurrent rating already rewrote the aggregate, so a conflict counts as unchanged.
func (s *AggregateBackfillService) BackfillSingle(ctx context.Context, post *entities.FeedbackPost) (bool, error) {
	want := entities.ComputeRatingAggregate(post.Ratings)
	if aggregatesEqual(post.Aggregate, want) {
		return false, nil
	}

	err := s.posts.UpdateRatings(ctx, post.ID, post.Ratings, want, post.Version)
	if apperrors.Is(err, apperrors.ErrorTypeConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func aggregatesEqual(a, b entities.RatingAggregate) bool {
	return a.Count == b.Count && a.Mean == b.Mean && maps.Equal(a.Histogram, b.Histogram)
}
