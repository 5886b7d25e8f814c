package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationKind is the closed set of feed event sources
type NotificationKind string

const (
	// NotificationKindStored is a persisted alert with its own seen flag
	NotificationKindStored NotificationKind = "stored"
	// NotificationKindAdminResponse is derived from a complaint that has replies
	NotificationKindAdminResponse NotificationKind = "admin_response"
	// NotificationKindNewBroadcast is derived from a recently created feedback post
	NotificationKindNewBroadcast NotificationKind = "new_broadcast"
)

// Id prefixes of derived events
const (
	AdminResponseIDPrefix = "resp-"
	NewBroadcastIDPrefix  = "new-"
)

// StatusAlertIDPrefix marks stored alerts projected from a status change event
const StatusAlertIDPrefix = "status-"

// NotificationEvent is one entry of a recipient's feed
type NotificationEvent struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	Message    string           `json:"message"`
	OccurredAt time.Time        `json:"occurred_at"`
	Seen       bool             `json:"seen"`
}

// NotificationFeed is the synthesized, newest-first feed
type NotificationFeed struct {
	Events      []NotificationEvent `json:"events"`
	UnseenCount int                 `json:"unseen_count"`
}

// Alert is a stored notification addressed to one recipient
type Alert struct {
	ID          string    `json:"id" db:"id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Message     string    `json:"message" db:"message"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Seen        bool      `json:"seen" db:"seen"`
}

// NewAlert creates an unseen alert for recipientID
func NewAlert(recipientID, message string, now time.Time) *Alert {
	return &Alert{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Message:     message,
		CreatedAt:   now,
	}
}

// NewStatusAlert creates the alert for a status change event. Its id is
// derived from the event so every delivery of the event maps to one alert.
func NewStatusAlert(event *ComplaintEvent, message string) *Alert {
	alert := NewAlert(event.AuthorID, message, event.OccurredAt)
	if event.ID != "" {
		alert.ID = StatusAlertIDPrefix + event.ID
	}
	return alert
}

// Event converts the alert into a feed entry
func (a *Alert) Event() NotificationEvent {
	return NotificationEvent{
		ID:         a.ID,
		Kind:       NotificationKindStored,
		Message:    a.Message,
		OccurredAt: a.CreatedAt,
		Seen:       a.Seen,
	}
}

// AdminResponseEvent derives the "admin responded" entry for a complaint
func AdminResponseEvent(c *Complaint) NotificationEvent {
	return NotificationEvent{
		ID:         AdminResponseIDPrefix + c.ID,
		Kind:       NotificationKindAdminResponse,
		Message:    "Admin responded to your complaint: " + c.Title,
		OccurredAt: c.UpdatedAt,
	}
}

// NewBroadcastEvent derives the "new feedback request" entry for a post
func NewBroadcastEvent(p *FeedbackPost) NotificationEvent {
	return NotificationEvent{
		ID:         NewBroadcastIDPrefix + p.ID,
		Kind:       NotificationKindNewBroadcast,
		Message:    "New Feedback Request: " + p.Title,
		OccurredAt: p.CreatedAt,
	}
}

// ClassifyNotificationID maps an incoming id back to the kind that produced it.
// Stored alerts carry UUIDs or the status- prefix and so never collide with
// the derived prefixes.
func ClassifyNotificationID(id string) NotificationKind {
	switch {
	case strings.HasPrefix(id, AdminResponseIDPrefix):
		return NotificationKindAdminResponse
	case strings.HasPrefix(id, NewBroadcastIDPrefix):
		return NotificationKindNewBroadcast
	default:
		return NotificationKindStored
	}
}
