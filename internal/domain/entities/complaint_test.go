package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseComplaintStatus(t *testing.T) {
	cases := map[string]ComplaintStatus{
		"resolved":    ComplaintStatusResolved,
		"RESOLVED":    ComplaintStatusResolved,
		" Pending ":   ComplaintStatusPending,
		"in-progress": ComplaintStatusInProgress,
		"IN_PROGRESS": ComplaintStatusInProgress,
		"In Progress": ComplaintStatusInProgress,
		"rejected":    ComplaintStatusRejected,
	}
	for raw, want := range cases {
		got, ok := ParseComplaintStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "closed", "done", "pending!"} {
		_, ok := ParseComplaintStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestComplaintStatus_Label(t *testing.T) {
	assert.Equal(t, "In Progress", ComplaintStatusInProgress.Label())
	assert.Equal(t, "Resolved", ComplaintStatusResolved.Label())
}

func TestComplaint_HasResponse(t *testing.T) {
	blank := "   "
	stored := "[3/1/2024, 10:00:00 AM] Admin: Issue fixed"

	assert.False(t, (&Complaint{}).HasResponse())
	assert.False(t, (&Complaint{ResponseLog: &blank}).HasResponse())

	c := &Complaint{ResponseLog: &stored}
	assert.True(t, c.HasResponse())
	assert.Equal(t, []string{"Admin: Issue fixed"}, c.Responses().Messages())
}

func TestFeedbackPost_IsVisibleTo(t *testing.T) {
	all := &FeedbackPost{Audience: AudienceAll}
	specific := &FeedbackPost{Audience: AudienceSpecific, RecipientIDs: []string{"s1", "s2"}}

	assert.True(t, all.IsVisibleTo("anyone"))
	assert.True(t, specific.IsVisibleTo("s2"))
	assert.False(t, specific.IsVisibleTo("s3"))
}

func TestParseAudience(t *testing.T) {
	a, ok := ParseAudience("")
	assert.True(t, ok)
	assert.Equal(t, AudienceAll, a)

	a, ok = ParseAudience("SPECIFIC")
	assert.True(t, ok)
	assert.Equal(t, AudienceSpecific, a)

	_, ok = ParseAudience("faculty")
	assert.False(t, ok)
}

func TestNewComplaintEvent(t *testing.T) {
	now := time.Now()
	c := &Complaint{ID: "c1", AuthorID: "s1", Title: "Broken fan", Status: ComplaintStatusResolved}

	ev := NewComplaintEvent(c, ComplaintEventStatusChanged, now)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "c1", ev.ComplaintID)
	assert.Equal(t, "s1", ev.AuthorID)
	assert.Equal(t, ComplaintStatusResolved, ev.Status)
	assert.Equal(t, now, ev.OccurredAt)
}
