package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// FeedbackPostStore keeps posts in process memory for local development and demos.
type FeedbackPostStore struct {
	mu    sync.RWMutex
	posts map[string]*entities.FeedbackPost
}

// NewFeedbackPostStore creates an empty post store
func NewFeedbackPostStore() *FeedbackPostStore {
	return &FeedbackPostStore{posts: make(map[string]*entities.FeedbackPost)}
}

var _ repositories.FeedbackPostRepository = (*FeedbackPostStore)(nil)

// Create stores a copy of post
func (s *FeedbackPostStore) Create(ctx context.Context, post *entities.FeedbackPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[post.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("feedback post %s already exists", post.ID))
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

// GetByID returns a copy of the stored post
func (s *FeedbackPostStore) GetByID(ctx context.Context, id string) (*entities.FeedbackPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	return clonePost(post), nil
}

// List returns posts newest first
func (s *FeedbackPostStore) List(ctx context.Context, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	return s.collect(filter, func(*entities.FeedbackPost) bool { return true }), nil
}

// ListVisibleTo returns posts addressed to recipientID, newest first
func (s *FeedbackPostStore) ListVisibleTo(ctx context.Context, recipientID string, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	return s.collect(filter, func(p *entities.FeedbackPost) bool { return p.IsVisibleTo(recipientID) }), nil
}

// UpdateRatings swaps ratings and aggregate when the version still matches
func (s *FeedbackPostStore) UpdateRatings(ctx context.Context, id string, ratings []entities.Rating, aggregate entities.RatingAggregate, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	if post.Version != expectedVersion {
		return apperrors.NewConflictError(fmt.Sprintf("feedback post %s changed since version %d", id, expectedVersion))
	}

	post.Ratings = append([]entities.Rating(nil), ratings...)
	post.Aggregate = cloneAggregate(aggregate)
	post.Version++
	post.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a post
func (s *FeedbackPostStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("feedback post with id %s not found", id))
	}
	delete(s.posts, id)
	return nil
}

func (s *FeedbackPostStore) collect(filter repositories.FeedbackPostFilter, keep func(*entities.FeedbackPost) bool) []*entities.FeedbackPost {
	s.mu.RLock()
	out := make([]*entities.FeedbackPost, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.CreatedSince != nil && p.CreatedAt.Before(*filter.CreatedSince) {
			continue
		}
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, filter.Offset, filter.Limit)
}

func clonePost(p *entities.FeedbackPost) *entities.FeedbackPost {
	cp := *p
	cp.RecipientIDs = append([]string(nil), p.RecipientIDs...)
	cp.Ratings = append([]entities.Rating(nil), p.Ratings...)
	cp.Aggregate = cloneAggregate(p.Aggregate)
	return &cp
}

func cloneAggregate(a entities.RatingAggregate) entities.RatingAggregate {
	cp := a
	cp.Histogram = make(map[int]int, len(a.Histogram))
	for k, v := range a.Histogram {
		cp.Histogram[k] = v
	}
	return cp
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
