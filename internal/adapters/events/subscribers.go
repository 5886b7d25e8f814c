package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
)

const subscriberBuffer = 100

// subscriberSet tracks local listener channels per bus channel
type subscriberSet struct {
	mu   sync.RWMutex
	subs map[string]map[chan *entities.ComplaintEvent]struct{}
}

func newSubscriberSet() *subscriberSet {
	return &subscriberSet{subs: make(map[string]map[chan *entities.ComplaintEvent]struct{})}
}

func (s *subscriberSet) add(channel string) (chan *entities.ComplaintEvent, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[channel] == nil {
		s.subs[channel] = make(map[chan *entities.ComplaintEvent]struct{})
	}
	ch := make(chan *entities.ComplaintEvent, subscriberBuffer)
	s.subs[channel][ch] = struct{}{}
	return ch, len(s.subs[channel])
}

// remove closes ch and returns how many subscribers remain on channel
func (s *subscriberSet) remove(channel string, ch chan *entities.ComplaintEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.subs[channel]
	if !ok {
		return 0
	}
	if _, ok := set[ch]; ok {
		delete(set, ch)
		close(ch)
	}
	if len(set) == 0 {
		delete(s.subs, channel)
	}
	return len(set)
}

func (s *subscriberSet) closeChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subs[channel] {
		close(ch)
	}
	delete(s.subs, channel)
}

// broadcast never blocks; a full subscriber misses the event
func (s *subscriberSet) broadcast(channel string, event *entities.ComplaintEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subs[channel] {
		select {
		case ch <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
		}
	}
}

func (s *subscriberSet) channels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.subs))
	for channel := range s.subs {
		out = append(out, channel)
	}
	return out
}
