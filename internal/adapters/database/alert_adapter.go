package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// AlertAdapter stores alerts in Postgres. It backs the feed when Redis is not configured.
type AlertAdapter struct {
	db *sqlx.DB
}

// NewAlertAdapter creates a new alert adapter
func NewAlertAdapter(db *sqlx.DB) repositories.AlertRepository {
	return &AlertAdapter{db: db}
}

// Create appends an alert to its recipient's list; an existing id is kept
func (a *AlertAdapter) Create(ctx context.Context, alert *entities.Alert) error {
	query := `
		INSERT INTO stored_alerts (id, recipient_id, message, seen, created_at)
		VALUES (:id, :recipient_id, :message, :seen, :created_at)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := a.db.NamedExecContext(ctx, query, alert); err != nil {
		return apperrors.NewStorageError("failed to create alert", err)
	}
	return nil
}

// ListByRecipient retrieves a recipient's alerts, newest first
func (a *AlertAdapter) ListByRecipient(ctx context.Context, recipientID string, since time.Time) ([]*entities.Alert, error) {
	alerts := []*entities.Alert{}
	query := `
		SELECT id, recipient_id, message, seen, created_at
		FROM stored_alerts
		WHERE recipient_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	if err := a.db.SelectContext(ctx, &alerts, query, recipientID, since); err != nil {
		return nil, apperrors.NewStorageError("failed to list alerts", err)
	}
	return alerts, nil
}

// MarkSeen flags one of the recipient's alerts as seen
func (a *AlertAdapter) MarkSeen(ctx context.Context, recipientID, alertID string) error {
	query := `UPDATE stored_alerts SET seen = TRUE WHERE id = $1 AND recipient_id = $2`
	result, err := a.db.ExecContext(ctx, query, alertID, recipientID)
	if err != nil {
		return apperrors.NewStorageError("failed to mark alert seen", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("alert %s not found for recipient %s", alertID, recipientID))
	}
	return nil
}
