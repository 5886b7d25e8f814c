package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
)

// AlertProjectionService turns complaint status changes into stored alerts
// for the complaint's author
type AlertProjectionService struct {
	alerts   repositories.AlertRepository
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewAlertProjectionService creates a new alert projection service
func NewAlertProjectionService(alerts repositories.AlertRepository, eventBus providers.EventBus) *AlertProjectionService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AlertProjectionService{
		alerts:   alerts,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for complaint events
func (s *AlertProjectionService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelComplaints)
	if err != nil {
		return fmt.Errorf("failed to subscribe to complaint events: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelComplaints).Msg("Alert projection service started")
	return nil
}

// Stop stops the projection and waits for the in-flight event to finish
func (s *AlertProjectionService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("Alert projection service stopped")
}

func (s *AlertProjectionService) processEvents(eventChan <-chan *entities.ComplaintEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent stores one alert per status change. Every instance subscribed
// to the bus sees the event; the alert id is derived from the event and
// Create ignores ids that already exist, so replicas store it once.
// Responses already surface as derived feed entries and are not projected.
func (s *AlertProjectionService) handleEvent(event *entities.ComplaintEvent) {
	if event.Type != entities.ComplaintEventStatusChanged || event.AuthorID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alert := entities.NewStatusAlert(event, StatusChangeMessage(event.Title, event.Status))
	if err := s.alerts.Create(ctx, alert); err != nil {
		log.Warn().Err(err).
			Str("complaint_id", event.ComplaintID).
			Str("recipient_id", event.AuthorID).
			Msg("Failed to store status alert")
		return
	}

	log.Debug().
		Str("complaint_id", event.ComplaintID).
		Str("alert_id", alert.ID).
		Msg("Status alert stored")
}

// StatusChangeMessage renders the alert text for a status change
func StatusChangeMessage(title string, status entities.ComplaintStatus) string {
	return fmt.Sprintf("Your complaint %q is now %s", title, status.Label())
}
