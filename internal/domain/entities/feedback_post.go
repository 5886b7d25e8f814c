package entities

import (
	"slices"
	"strings"
	"time"
)

// Audience selects who receives a feedback post
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceSpecific Audience = "specific"
)

// ParseAudience accepts "all" or "specific" in any case. Blank means all.
func ParseAudience(raw string) (Audience, bool) {
	switch Audience(strings.ToLower(strings.TrimSpace(raw))) {
	case "", AudienceAll:
		return AudienceAll, true
	case AudienceSpecific:
		return AudienceSpecific, true
	}
	return "", false
}

// FeedbackCategories lists the subjects an administrator can request feedback on
var FeedbackCategories = []string{
	"Hostel Food Quality",
	"Campus Hygiene",
	"Infrastructure",
	"Library Services",
	"Transportation",
	"Academic Support",
	"Other",
}

// FeedbackPost is an administrator's broadcast request for ratings.
// Ratings and Aggregate are always persisted together.
type FeedbackPost struct {
	ID           string          `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Category     string          `json:"category" db:"category"`
	Content      string          `json:"content" db:"content"`
	Audience     Audience        `json:"audience" db:"audience"`
	RecipientIDs []string        `json:"recipient_ids" db:"recipient_ids"`
	AuthorID     string          `json:"author_id" db:"author_id"`
	AuthorName   string          `json:"author_name" db:"author_name"`
	Ratings      []Rating        `json:"ratings" db:"ratings"`
	Aggregate    RatingAggregate `json:"aggregate" db:"aggregate"`
	Version      int64           `json:"version" db:"version"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultPostTitle is used when an administrator leaves the title blank
func DefaultPostTitle(category string) string {
	return category + " Feedback Request"
}

// IsVisibleTo reports whether recipientID is in the post's audience
func (p *FeedbackPost) IsVisibleTo(recipientID string) bool {
	if p.Audience != AudienceSpecific {
		return true
	}
	return slices.Contains(p.RecipientIDs, recipientID)
}

// RatingBy returns the rating submitted by authorID, if any
func (p *FeedbackPost) RatingBy(authorID string) (Rating, bool) {
	for _, r := range p.Ratings {
		if r.AuthorID == authorID {
			return r, true
		}
	}
	return Rating{}, false
}

// IsKnownFeedbackCategory reports whether category is one of FeedbackCategories
func IsKnownFeedbackCategory(category string) bool {
	return slices.Contains(FeedbackCategories, category)
}
