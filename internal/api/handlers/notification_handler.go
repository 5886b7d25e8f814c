package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// NotificationFeedService defines the feed operations used by the handler
type NotificationFeedService interface {
	BuildFeed(ctx context.Context, recipientID string, now time.Time) (*entities.NotificationFeed, error)
	MarkSeen(ctx context.Context, recipientID, notificationID string) error
}

// NotificationHandler serves the caller's notification feed
type NotificationHandler struct {
	feed NotificationFeedService
	now  func() time.Time
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(feed NotificationFeedService) *NotificationHandler {
	return &NotificationHandler{
		feed: feed,
		now:  time.Now,
	}
}

// GetFeed handles GET /api/notifications
func (h *NotificationHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	feed, err := h.feed.BuildFeed(r.Context(), session.UserID, h.now())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feed)
}

// MarkSeen handles POST /api/notifications/{id}/seen
func (h *NotificationHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "notification ID is required")
		return
	}

	if err := h.feed.MarkSeen(r.Context(), session.UserID, id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
