package entities

import (
	"time"

	"github.com/google/uuid"
)

// ComplaintEventType describes what happened to a complaint
type ComplaintEventType string

const (
	ComplaintEventCreated       ComplaintEventType = "created"
	ComplaintEventStatusChanged ComplaintEventType = "status_changed"
	ComplaintEventResponded     ComplaintEventType = "responded"
)

// ComplaintEvent is published after a complaint mutation commits
type ComplaintEvent struct {
	ID          string             `json:"id"`
	ComplaintID string             `json:"complaint_id"`
	AuthorID    string             `json:"author_id"`
	Title       string             `json:"title"`
	Type        ComplaintEventType `json:"type"`
	Status      ComplaintStatus    `json:"status"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// NewComplaintEvent snapshots c for an event of the given type
func NewComplaintEvent(c *Complaint, eventType ComplaintEventType, now time.Time) *ComplaintEvent {
	return &ComplaintEvent{
		ID:          uuid.NewString(),
		ComplaintID: c.ID,
		AuthorID:    c.AuthorID,
		Title:       c.Title,
		Type:        eventType,
		Status:      c.Status,
		OccurredAt:  now,
	}
}
