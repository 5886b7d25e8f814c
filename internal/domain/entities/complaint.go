package entities

import (
	"slices"
	"strings"
	"time"
)

// ComplaintStatus is the triage state of a complaint
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every valid status in workflow order
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

// ParseComplaintStatus accepts any casing and "-", "_" or " " as the word separator
func ParseComplaintStatus(raw string) (ComplaintStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	status := ComplaintStatus(normalized)
	if slices.Contains(ComplaintStatuses, status) {
		return status, true
	}
	return "", false
}

// Label returns the human form used in alerts, e.g. "In Progress"
func (s ComplaintStatus) Label() string {
	switch s {
	case ComplaintStatusPending:
		return "Pending"
	case ComplaintStatusInProgress:
		return "In Progress"
	case ComplaintStatusResolved:
		return "Resolved"
	case ComplaintStatusRejected:
		return "Rejected"
	}
	return string(s)
}

// ComplaintCategories lists the categories a student can file under
var ComplaintCategories = []string{
	"Academic",
	"Infrastructure",
	"Faculty",
	"Administration",
	"Library",
	"Canteen",
	"Hostel",
	"Other",
}

// IsKnownComplaintCategory reports whether category is one of ComplaintCategories
func IsKnownComplaintCategory(category string) bool {
	return slices.Contains(ComplaintCategories, category)
}

// Complaint is a student-authored issue report. Status and ResponseLog are
// independent: responding never moves the status and vice versa.
type Complaint struct {
	ID               string          `json:"id" db:"id"`
	Title            string          `json:"title" db:"title"`
	Category         string          `json:"category" db:"category"`
	Description      string          `json:"description" db:"description"`
	AuthorID         string          `json:"author_id" db:"author_id"`
	AuthorName       string          `json:"author_name" db:"author_name"`
	AuthorExternalID string          `json:"author_external_id,omitempty" db:"author_external_id"`
	Status           ComplaintStatus `json:"status" db:"status"`
	ResponseLog      *string         `json:"response_log,omitempty" db:"response_log"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// HasResponse reports whether an administrator has answered the complaint
func (c *Complaint) HasResponse() bool {
	return c.ResponseLog != nil && strings.TrimSpace(*c.ResponseLog) != ""
}

// Responses decodes the stored response log
func (c *Complaint) Responses() ResponseLog {
	if c.ResponseLog == nil {
		return ResponseLog{}
	}
	return DeserializeResponseLog(*c.ResponseLog)
}
