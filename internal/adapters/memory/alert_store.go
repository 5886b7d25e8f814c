package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// AlertStore keeps per-recipient alerts in process memory
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]map[string]entities.Alert
}

// NewAlertStore creates an empty alert store
func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[string]map[string]entities.Alert)}
}

var _ repositories.AlertRepository = (*AlertStore)(nil)

// Create appends an alert to its recipient's list
func (s *AlertStore) Create(ctx context.Context, alert *entities.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alerts[alert.RecipientID] == nil {
		s.alerts[alert.RecipientID] = make(map[string]entities.Alert)
	}
	if _, exists := s.alerts[alert.RecipientID][alert.ID]; exists {
		return nil
	}
	s.alerts[alert.RecipientID][alert.ID] = *alert
	return nil
}

// ListByRecipient returns alerts created at or after since, newest first
func (s *AlertStore) ListByRecipient(ctx context.Context, recipientID string, since time.Time) ([]*entities.Alert, error) {
	s.mu.RLock()
	out := make([]*entities.Alert, 0, len(s.alerts[recipientID]))
	for _, a := range s.alerts[recipientID] {
		if a.CreatedAt.Before(since) {
			continue
		}
		alert := a
		out = append(out, &alert)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MarkSeen flags one alert; the recipient's other alerts are untouched
func (s *AlertStore) MarkSeen(ctx context.Context, recipientID, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[recipientID][alertID]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("alert %s not found for recipient %s", alertID, recipientID))
	}
	alert.Seen = true
	s.alerts[recipientID][alertID] = alert
	return nil
}
