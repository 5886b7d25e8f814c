package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

func TestFeedbackPostStore_UpdateRatingsVersioning(t *testing.T) {
	ctx := context.Background()
	store := NewFeedbackPostStore()
	require.NoError(t, store.Create(ctx, &entities.FeedbackPost{ID: "p1", Aggregate: entities.EmptyRatingAggregate()}))

	ratings := []entities.Rating{{AuthorID: "s1", Score: 4}}
	require.NoError(t, store.UpdateRatings(ctx, "p1", ratings, entities.ComputeRatingAggregate(ratings), 0))

	err := store.UpdateRatings(ctx, "p1", ratings, entities.ComputeRatingAggregate(ratings), 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConflict))

	post, err := store.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.Version)
	assert.Equal(t, 1, post.Aggregate.Count)

	err = store.UpdateRatings(ctx, "missing", ratings, entities.ComputeRatingAggregate(ratings), 0)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestFeedbackPostStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewFeedbackPostStore()
	require.NoError(t, store.Create(ctx, &entities.FeedbackPost{ID: "p1", Aggregate: entities.EmptyRatingAggregate()}))

	post, _ := store.GetByID(ctx, "p1")
	post.Aggregate.Histogram[5] = 99
	post.Ratings = append(post.Ratings, entities.Rating{AuthorID: "x"})

	again, _ := store.GetByID(ctx, "p1")
	assert.Equal(t, 0, again.Aggregate.Histogram[5])
	assert.Empty(t, again.Ratings)
}

func TestFeedbackPostStore_ListVisibleTo(t *testing.T) {
	ctx := context.Background()
	store := NewFeedbackPostStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &entities.FeedbackPost{ID: "all", Audience: entities.AudienceAll, CreatedAt: base}))
	require.NoError(t, store.Create(ctx, &entities.FeedbackPost{ID: "mine", Audience: entities.AudienceSpecific, RecipientIDs: []string{"s1"}, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.Create(ctx, &entities.FeedbackPost{ID: "theirs", Audience: entities.AudienceSpecific, RecipientIDs: []string{"s2"}, CreatedAt: base.Add(2 * time.Hour)}))

	posts, err := store.ListVisibleTo(ctx, "s1", repositories.FeedbackPostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "mine", posts[0].ID)
	assert.Equal(t, "all", posts[1].ID)

	since := base.Add(30 * time.Minute)
	posts, err = store.ListVisibleTo(ctx, "s1", repositories.FeedbackPostFilter{CreatedSince: &since})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "mine", posts[0].ID)
}

func TestComplaintStore_FiltersAndPartialUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewComplaintStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &entities.Complaint{ID: "c1", Title: "Broken fan", AuthorID: "s1", Status: entities.ComplaintStatusPending, CreatedAt: base, UpdatedAt: base}))
	require.NoError(t, store.Create(ctx, &entities.Complaint{ID: "c2", Title: "Cold food", AuthorID: "s2", Status: entities.ComplaintStatusPending, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}))

	later := base.Add(5 * time.Hour)
	require.NoError(t, store.UpdateStatus(ctx, "c1", entities.ComplaintStatusResolved, later))

	c1, err := store.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, entities.ComplaintStatusResolved, c1.Status)
	assert.Nil(t, c1.ResponseLog)
	assert.Equal(t, later, c1.UpdatedAt)

	list, err := store.List(ctx, repositories.ComplaintFilter{Query: "FAN"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].ID)

	list, err = store.List(ctx, repositories.ComplaintFilter{Status: entities.ComplaintStatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c2", list[0].ID)

	err = store.UpdateResponseLog(ctx, "missing", "x", later)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestAlertStore_MarkSeenIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()
	now := time.Now()

	a1 := entities.NewAlert("s1", "one", now)
	a2 := entities.NewAlert("s1", "two", now.Add(time.Minute))
	require.NoError(t, store.Create(ctx, a1))
	require.NoError(t, store.Create(ctx, a2))

	require.NoError(t, store.MarkSeen(ctx, "s1", a1.ID))

	alerts, err := store.ListByRecipient(ctx, "s1", time.Time{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, a2.ID, alerts[0].ID)
	assert.False(t, alerts[0].Seen)
	assert.True(t, alerts[1].Seen)

	err = store.MarkSeen(ctx, "s2", a1.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestAlertStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Create(ctx, entities.NewAlert("s1", "hi", time.Now()))
		}()
	}
	wg.Wait()

	alerts, err := store.ListByRecipient(ctx, "s1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, alerts, 50)
}

func TestAlertStore_CreateKeepsExistingID(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()
	now := time.Now()

	require.NoError(t, store.Create(ctx, &entities.Alert{ID: "status-e1", RecipientID: "s1", Message: "first", CreatedAt: now}))
	require.NoError(t, store.MarkSeen(ctx, "s1", "status-e1"))
	require.NoError(t, store.Create(ctx, &entities.Alert{ID: "status-e1", RecipientID: "s1", Message: "again", CreatedAt: now}))

	alerts, err := store.ListByRecipient(ctx, "s1", time.Time{})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "first", alerts[0].Message)
	assert.True(t, alerts[0].Seen)
}
