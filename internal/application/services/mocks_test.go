package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
)

// MockFeedbackPostRepository is a testify mock of repositories.FeedbackPostRepository
type MockFeedbackPostRepository struct {
	mock.Mock
}

func (m *MockFeedbackPostRepository) Create(ctx context.Context, post *entities.FeedbackPost) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockFeedbackPostRepository) GetByID(ctx context.Context, id string) (*entities.FeedbackPost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FeedbackPost), args.Error(1)
}

func (m *MockFeedbackPostRepository) List(ctx context.Context, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FeedbackPost), args.Error(1)
}

func (m *MockFeedbackPostRepository) ListVisibleTo(ctx context.Context, recipientID string, filter repositories.FeedbackPostFilter) ([]*entities.FeedbackPost, error) {
	args := m.Called(ctx, recipientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FeedbackPost), args.Error(1)
}

func (m *MockFeedbackPostRepository) UpdateRatings(ctx context.Context, id string, ratings []entities.Rating, aggregate entities.RatingAggregate, expectedVersion int64) error {
	args := m.Called(ctx, id, ratings, aggregate, expectedVersion)
	return args.Error(0)
}

func (m *MockFeedbackPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockComplaintRepository is a testify mock of repositories.ComplaintRepository
type MockComplaintRepository struct {
	mock.Mock
}

func (m *MockComplaintRepository) Create(ctx context.Context, complaint *entities.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintRepository) GetByID(ctx context.Context, id string) (*entities.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Complaint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) List(ctx context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Complaint), args.Error(1)
}

func (m *MockComplaintRepository) UpdateStatus(ctx context.Context, id string, status entities.ComplaintStatus, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}

func (m *MockComplaintRepository) UpdateResponseLog(ctx context.Context, id string, responseLog string, updatedAt time.Time) error {
	args := m.Called(ctx, id, responseLog, updatedAt)
	return args.Error(0)
}

// MockComplaintSearchRepository is a testify mock of repositories.ComplaintSearchRepository
type MockComplaintSearchRepository struct {
	mock.Mock
}

func (m *MockComplaintSearchRepository) Index(ctx context.Context, complaint *entities.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockComplaintSearchRepository) Search(ctx context.Context, filter repositories.ComplaintFilter) ([]string, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockComplaintSearchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAlertRepository is a testify mock of repositories.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *entities.Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) ListByRecipient(ctx context.Context, recipientID string, since time.Time) ([]*entities.Alert, error) {
	args := m.Called(ctx, recipientID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Alert), args.Error(1)
}

func (m *MockAlertRepository) MarkSeen(ctx context.Context, recipientID, alertID string) error {
	args := m.Called(ctx, recipientID, alertID)
	return args.Error(0)
}

// MockEventBus is a testify mock of providers.EventBus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ComplaintEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ComplaintEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.ComplaintEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
