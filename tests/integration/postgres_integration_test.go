//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvoice/portal/backend/internal/adapters/database"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

func TestRatingService_ConcurrentSubmissionsIntegration(t *testing.T) {
	client := newTestPostgresClient(t)
	ctx := context.Background()

	posts := database.NewFeedbackPostAdapter(client)
	post, err := services.NewFeedbackPostService(posts).Create(ctx, services.CreateFeedbackPostInput{
		Category: "Campus Hygiene",
		Audience: entities.AudienceAll,
		AuthorID: "admin-1",
	})
	require.NoError(t, err)

	ratings := services.NewRatingService(posts, 20)

	const students = 8
	var wg sync.WaitGroup
	errs := make(chan error, students)
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ratings.Submit(ctx, services.SubmitRatingInput{
				PostID:   post.ID,
				AuthorID: fmt.Sprintf("student-%d", i),
				Score:    i%5 + 1,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Ratings, students)
	assert.Equal(t, entities.ComputeRatingAggregate(stored.Ratings), stored.Aggregate)
}

func TestComplaintTriage_PostgresIntegration(t *testing.T) {
	client := newTestPostgresClient(t)
	ctx := context.Background()

	complaints := database.NewComplaintAdapter(client)
	complaintService := services.NewComplaintService(complaints, nil, nil)
	triage := services.NewComplaintStatusService(complaints, nil, nil)

	created, err := complaintService.Create(ctx, services.CreateComplaintInput{
		Title:       "Leaking tap",
		Category:    "Hostel",
		Description: "Second floor washroom",
		AuthorID:    "student-1",
	})
	require.NoError(t, err)

	require.NoError(t, triage.AddResponse(ctx, created.ID, "Plumber booked"))
	require.NoError(t, triage.AddResponse(ctx, created.ID, "Fixed"))
	require.NoError(t, triage.ChangeStatus(ctx, created.ID, "resolved"))

	stored, err := complaints.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ComplaintStatusResolved, stored.Status)
	assert.Equal(t, []string{"Admin: Plumber booked", "Admin: Fixed"}, stored.Responses().Messages())

	alerts := database.NewAlertAdapter(client.SQLX())
	feed := services.NewNotificationFeedService(alerts, complaints, database.NewFeedbackPostAdapter(client), 0)
	result, err := feed.BuildFeed(ctx, "student-1", time.Now())
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, entities.AdminResponseIDPrefix+created.ID, result.Events[0].ID)
}
