package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	redisclient "github.com/campusvoice/portal/backend/internal/infrastructure/clients/redis"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

const keyPrefix = "alerts:"

// RedisAdapter keeps each recipient's alerts in one hash keyed by alert ID
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a Redis-backed alert repository
func NewRedisAdapter(client *redisclient.Client) repositories.AlertRepository {
	return &RedisAdapter{client: client}
}

// RecipientKey returns the hash holding recipientID's alerts
func RecipientKey(recipientID string) string {
	return keyPrefix + recipientID
}

// Create appends an alert to its recipient's hash. HSETNX keeps an existing
// field so a redelivered event cannot reset its seen flag.
func (a *RedisAdapter) Create(ctx context.Context, alert *entities.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal alert", err)
	}
	if err := a.client.Client().HSetNX(ctx, RecipientKey(alert.RecipientID), alert.ID, data).Err(); err != nil {
		return apperrors.NewStorageError("failed to store alert", err)
	}
	return nil
}

// ListByRecipient returns alerts created at or after since, newest first
func (a *RedisAdapter) ListByRecipient(ctx context.Context, recipientID string, since time.Time) ([]*entities.Alert, error) {
	fields, err := a.client.Client().HGetAll(ctx, RecipientKey(recipientID)).Result()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to load alerts", err)
	}
	return decodeAlerts(ctx, recipientID, fields, since), nil
}

// decodeAlerts parses hash fields, skipping ones that no longer decode so a
// single bad entry does not hide the recipient's other alerts
func decodeAlerts(ctx context.Context, recipientID string, fields map[string]string, since time.Time) []*entities.Alert {
	alerts := make([]*entities.Alert, 0, len(fields))
	for id, raw := range fields {
		var alert entities.Alert
		if err := json.Unmarshal([]byte(raw), &alert); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("recipient_id", recipientID).
				Str("alert_id", id).
				Msg("Skipping corrupt alert")
			continue
		}
		if alert.CreatedAt.Before(since) {
			continue
		}
		alerts = append(alerts, &alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts
}

// MarkSeen rewrites a single hash field. Other alerts of the recipient are untouched.
func (a *RedisAdapter) MarkSeen(ctx context.Context, recipientID, alertID string) error {
	key := RecipientKey(recipientID)
	raw, err := a.client.Client().HGet(ctx, key, alertID).Bytes()
	if err == redis.Nil {
		return apperrors.NewNotFoundError(fmt.Sprintf("alert %s not found for recipient %s", alertID, recipientID))
	}
	if err != nil {
		return apperrors.NewStorageError("failed to load alert", err)
	}

	var alert entities.Alert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("corrupt alert %s", alertID), err)
	}
	if alert.Seen {
		return nil
	}
	alert.Seen = true

	data, err := json.Marshal(&alert)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal alert", err)
	}
	if err := a.client.Client().HSet(ctx, key, alertID, data).Err(); err != nil {
		return apperrors.NewStorageError("failed to update alert", err)
	}
	return nil
}
