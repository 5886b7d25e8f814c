package repositories

import (
	"context"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

// AlertRepository stores per-recipient alerts and their seen flags
type AlertRepository interface {
	// Create appends an alert to its recipient's list. An alert whose id is
	// already stored is left untouched, seen flag included.
	Create(ctx context.Context, alert *entities.Alert) error

	// ListByRecipient retrieves a recipient's alerts created at or after since (zero means all)
	ListByRecipient(ctx context.Context, recipientID string, since time.Time) ([]*entities.Alert, error)

	// MarkSeen flags one alert as seen. Unknown ids yield a NOT_FOUND error.
	MarkSeen(ctx context.Context, recipientID, alertID string) error
}
