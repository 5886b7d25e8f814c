package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

func TestComplaintService_Create_StartsPendingWithoutResponse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	bus := new(MockEventBus)
	svc := NewComplaintService(repo, search, bus)
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	repo.On("Create", ctx, mock.AnythingOfType("*entities.Complaint")).Return(nil)
	search.On("Index", ctx, mock.AnythingOfType("*entities.Complaint")).Return(nil)
	bus.On("Publish", ctx, providers.EventChannelComplaints, mock.MatchedBy(func(e *entities.ComplaintEvent) bool {
		return e.Type == entities.ComplaintEventCreated && e.AuthorID == "s1"
	})).Return(nil)

	complaint, err := svc.Create(ctx, CreateComplaintInput{
		Title:       " Broken fan ",
		Category:    "Hostel",
		Description: "Room 12 fan is broken",
		AuthorID:    "s1",
		AuthorName:  "Asha",
	})

	require.NoError(t, err)
	assert.Equal(t, "Broken fan", complaint.Title)
	assert.Equal(t, entities.ComplaintStatusPending, complaint.Status)
	assert.Nil(t, complaint.ResponseLog)
	assert.Equal(t, now, complaint.CreatedAt)
	repo.AssertExpectations(t)
	search.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestComplaintService_Create_SideEffectFailuresAreIgnored(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	bus := new(MockEventBus)
	svc := NewComplaintService(repo, search, bus)

	repo.On("Create", ctx, mock.Anything).Return(nil)
	search.On("Index", ctx, mock.Anything).Return(errors.New("typesense down"))
	bus.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	_, err := svc.Create(ctx, CreateComplaintInput{Title: "t", Category: "c", Description: "d", AuthorID: "s1"})
	assert.NoError(t, err)
}

func TestComplaintService_Create_RequiresFields(t *testing.T) {
	repo := new(MockComplaintRepository)
	svc := NewComplaintService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateComplaintInput{Title: "t", Category: "  ", Description: "d", AuthorID: "s1"})

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComplaintService_GetForSession(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	svc := NewComplaintService(repo, nil, nil)

	repo.On("GetByID", ctx, "c1").Return(&entities.Complaint{ID: "c1", AuthorID: "s1"}, nil)

	_, err := svc.GetForSession(ctx, "c1", entities.Session{UserID: "s1", Role: entities.RoleStudent})
	assert.NoError(t, err)

	_, err = svc.GetForSession(ctx, "c1", entities.Session{UserID: "admin", Role: entities.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.GetForSession(ctx, "c1", entities.Session{UserID: "s2", Role: entities.RoleStudent})
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeNotFound))
}

func TestComplaintService_ListForAdmin_UsesSearchIndex(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	svc := NewComplaintService(repo, search, nil)

	filter := repositories.ComplaintFilter{Status: entities.ComplaintStatusPending, Query: "fan"}
	search.On("Search", ctx, filter).Return([]string{"c2", "c1"}, nil)
	repo.On("GetByIDs", ctx, []string{"c2", "c1"}).Return([]*entities.Complaint{{ID: "c2"}, {ID: "c1"}}, nil)

	got, err := svc.ListForAdmin(ctx, repositories.ComplaintFilter{Status: entities.ComplaintStatusPending, Query: " fan "})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestComplaintService_ListForAdmin_FallsBackWhenSearchFails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	svc := NewComplaintService(repo, search, nil)

	filter := repositories.ComplaintFilter{Query: "fan"}
	search.On("Search", ctx, filter).Return(nil, errors.New("timeout"))
	repo.On("List", ctx, filter).Return([]*entities.Complaint{{ID: "c1"}}, nil)

	got, err := svc.ListForAdmin(ctx, filter)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestComplaintService_ListForAdmin_WithoutQuerySkipsSearch(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	svc := NewComplaintService(repo, search, nil)

	filter := repositories.ComplaintFilter{Status: entities.ComplaintStatusResolved}
	repo.On("List", ctx, filter).Return([]*entities.Complaint{}, nil)

	_, err := svc.ListForAdmin(ctx, filter)

	require.NoError(t, err)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestComplaintService_Reindex_WalksAllPages(t *testing.T) {
	ctx := context.Background()
	repo := new(MockComplaintRepository)
	search := new(MockComplaintSearchRepository)
	svc := NewComplaintService(repo, search, nil)

	repo.On("List", ctx, repositories.ComplaintFilter{Limit: 2, Offset: 0}).
		Return([]*entities.Complaint{{ID: "c1"}, {ID: "c2"}}, nil)
	repo.On("List", ctx, repositories.ComplaintFilter{Limit: 2, Offset: 2}).
		Return([]*entities.Complaint{{ID: "c3"}}, nil)
	search.On("Index", ctx, mock.Anything).Return(nil)

	n, err := svc.Reindex(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	search.AssertNumberOfCalls(t, "Index", 3)
}

func TestComplaintService_Reindex_RequiresSearch(t *testing.T) {
	svc := NewComplaintService(new(MockComplaintRepository), nil, nil)

	_, err := svc.Reindex(context.Background(), 10)
	assert.Error(t, err)
}
