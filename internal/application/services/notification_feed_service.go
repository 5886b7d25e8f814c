package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// DefaultFeedWindow is how far back the feed looks when no window is configured
const DefaultFeedWindow = 48 * time.Hour

// Feed source names used in logs and metrics
const (
	feedSourceAlerts     = "alerts"
	feedSourceComplaints = "complaints"
	feedSourcePosts      = "feedback_posts"
)

// NotificationFeedService synthesizes a recipient's feed from stored alerts,
// answered complaints and recent broadcast posts
type NotificationFeedService struct {
	alerts     repositories.AlertRepository
	complaints repositories.ComplaintRepository
	posts      repositories.FeedbackPostRepository
	window     time.Duration
	metrics    *observability.Metrics
}

// NewNotificationFeedService creates a feed service. A non-positive window uses DefaultFeedWindow.
func NewNotificationFeedService(
	alerts repositories.AlertRepository,
	complaints repositories.ComplaintRepository,
	posts repositories.FeedbackPostRepository,
	window time.Duration,
) *NotificationFeedService {
	if window <= 0 {
		window = DefaultFeedWindow
	}
	return &NotificationFeedService{
		alerts:     alerts,
		complaints: complaints,
		posts:      posts,
		window:     window,
	}
}

// WithMetrics enables counting of failed feed sources
func (s *NotificationFeedService) WithMetrics(metrics *observability.Metrics) *NotificationFeedService {
	s.metrics = metrics
	return s
}

// Window returns the configured lookback
func (s *NotificationFeedService) Window() time.Duration {
	return s.window
}

// BuildFeed collects every source concurrently. A failing source is logged and
// contributes nothing; only a cancelled context fails the whole feed.
func (s *NotificationFeedService) BuildFeed(ctx context.Context, recipientID string, now time.Time) (*entities.NotificationFeed, error) {
	since := now.Add(-s.window)

	sources := []struct {
		name  string
		fetch func(context.Context, string, time.Time) ([]entities.NotificationEvent, error)
	}{
		{feedSourceAlerts, s.storedEvents},
		{feedSourceComplaints, s.responseEvents},
		{feedSourcePosts, s.broadcastEvents},
	}

	results := make([][]entities.NotificationEvent, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := source.fetch(ctx, recipientID, since)
			if err != nil {
				observability.RecordFeedSourceFailure(ctx, s.metrics, source.name)
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Str("recipient_id", recipientID).
					Str("source", source.name).
					Msg("Notification source failed, skipping")
				return
			}
			results[i] = events
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewInternalError("notification feed cancelled", err)
	}

	var events []entities.NotificationEvent
	for _, r := range results {
		events = append(events, r...)
	}
	return assembleFeed(events), nil
}

// MarkSeen flags a stored alert as seen. Derived entries have no seen state,
// so marking them is a no-op, as is marking an unknown alert.
func (s *NotificationFeedService) MarkSeen(ctx context.Context, recipientID, notificationID string) error {
	switch entities.ClassifyNotificationID(notificationID) {
	case entities.NotificationKindAdminResponse, entities.NotificationKindNewBroadcast:
		return nil
	}

	err := s.alerts.MarkSeen(ctx, recipientID, notificationID)
	if err == nil {
		return nil
	}
	if apperrors.Is(err, apperrors.ErrorTypeNotFound) {
		observability.LoggerFromContext(ctx).Debug().
			Str("recipient_id", recipientID).
			Str("notification_id", notificationID).
			Msg("Ignoring seen mark for unknown alert")
		return nil
	}
	return asStorageError(err, "failed to mark notification seen")
}

func (s *NotificationFeedService) storedEvents(ctx context.Context, recipientID string, since time.Time) ([]entities.NotificationEvent, error) {
	alerts, err := s.alerts.ListByRecipient(ctx, recipientID, since)
	if err != nil {
		return nil, err
	}
	events := make([]entities.NotificationEvent, 0, len(alerts))
	for _, a := range alerts {
		if inWindow(a.CreatedAt, since) {
			events = append(events, a.Event())
		}
	}
	return events, nil
}

func (s *NotificationFeedService) responseEvents(ctx context.Context, recipientID string, since time.Time) ([]entities.NotificationEvent, error) {
	complaints, err := s.complaints.List(ctx, repositories.ComplaintFilter{
		AuthorID:     recipientID,
		UpdatedSince: &since,
	})
	if err != nil {
		return nil, err
	}
	var events []entities.NotificationEvent
	for _, c := range complaints {
		if c.HasResponse() && inWindow(c.UpdatedAt, since) {
			events = append(events, entities.AdminResponseEvent(c))
		}
	}
	return events, nil
}

func (s *NotificationFeedService) broadcastEvents(ctx context.Context, recipientID string, since time.Time) ([]entities.NotificationEvent, error) {
	posts, err := s.posts.ListVisibleTo(ctx, recipientID, repositories.FeedbackPostFilter{CreatedSince: &since})
	if err != nil {
		return nil, err
	}
	var events []entities.NotificationEvent
	for _, p := range posts {
		if p.IsVisibleTo(recipientID) && inWindow(p.CreatedAt, since) {
			events = append(events, entities.NewBroadcastEvent(p))
		}
	}
	return events, nil
}

// inWindow treats the lower bound as inclusive; zero instants are never in window
func inWindow(at, since time.Time) bool {
	return !at.IsZero() && !at.Before(since)
}

// assembleFeed orders events newest first and counts the unseen ones
func assembleFeed(events []entities.NotificationEvent) *entities.NotificationFeed {
	if events == nil {
		events = []entities.NotificationEvent{}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})

	unseen := 0
	for _, e := range events {
		if !e.Seen {
			unseen++
		}
	}
	return &entities.NotificationFeed{Events: events, UnseenCount: unseen}
}
