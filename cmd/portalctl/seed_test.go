package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusvoice/portal/backend/internal/adapters/memory"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
)

func TestSeed_PopulatesStores(t *testing.T) {
	ctx := context.Background()
	complaintRepo := memory.NewComplaintStore()
	postRepo := memory.NewFeedbackPostStore()

	err := seed(ctx,
		services.NewComplaintService(complaintRepo, nil, nil),
		services.NewComplaintStatusService(complaintRepo, nil, nil),
		services.NewFeedbackPostService(postRepo),
		services.NewRatingService(postRepo, 3),
	)
	require.NoError(t, err)

	complaints, err := complaintRepo.List(ctx, repositories.ComplaintFilter{})
	require.NoError(t, err)
	assert.Len(t, complaints, 3)

	answered := 0
	for _, c := range complaints {
		if c.HasResponse() {
			answered++
			assert.Equal(t, entities.ComplaintStatusInProgress, c.Status)
		}
	}
	assert.Equal(t, 1, answered)

	posts, err := postRepo.List(ctx, repositories.FeedbackPostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	for _, p := range posts {
		if p.Audience == entities.AudienceAll {
			assert.Equal(t, 3, p.Aggregate.Count)
			assert.Equal(t, 4.0, p.Aggregate.Mean)
		}
	}
}

func TestCommands_AreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "backfill-aggregates", "reindex"} {
		assert.True(t, names[want], want)
	}
}
