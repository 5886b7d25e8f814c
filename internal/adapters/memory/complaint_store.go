package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

// ComplaintStore keeps complaints in process memory
type ComplaintStore struct {
	mu         sync.RWMutex
	complaints map[string]*entities.Complaint
}

// NewComplaintStore creates an empty complaint store
func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{complaints: make(map[string]*entities.Complaint)}
}

var _ repositories.ComplaintRepository = (*ComplaintStore)(nil)

// Create stores a copy of complaint
func (s *ComplaintStore) Create(ctx context.Context, complaint *entities.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.complaints[complaint.ID]; exists {
		return apperrors.NewConflictError(fmt.Sprintf("complaint %s already exists", complaint.ID))
	}
	s.complaints[complaint.ID] = cloneComplaint(complaint)
	return nil
}

// GetByID returns a copy of the stored complaint
func (s *ComplaintStore) GetByID(ctx context.Context, id string) (*entities.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.complaints[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("complaint with id %s not found", id))
	}
	return cloneComplaint(c), nil
}

// GetByIDs returns complaints in the order of ids, skipping unknown ones
func (s *ComplaintStore) GetByIDs(ctx context.Context, ids []string) ([]*entities.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Complaint, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.complaints[id]; ok {
			out = append(out, cloneComplaint(c))
		}
	}
	return out, nil
}

// List returns complaints matching filter, newest first
func (s *ComplaintStore) List(ctx context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	s.mu.RLock()
	out := make([]*entities.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.AuthorID != "" && c.AuthorID != filter.AuthorID {
			continue
		}
		if filter.UpdatedSince != nil && c.UpdatedAt.Before(*filter.UpdatedSince) {
			continue
		}
		if query != "" && !matchesQuery(c, query) {
			continue
		}
		out = append(out, cloneComplaint(c))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, filter.Offset, filter.Limit), nil
}

// UpdateStatus changes only status and updated_at
func (s *ComplaintStore) UpdateStatus(ctx context.Context, id string, status entities.ComplaintStatus, updatedAt time.Time) error {
	return s.mutate(id, func(c *entities.Complaint) {
		c.Status = status
		c.UpdatedAt = updatedAt
	})
}

// UpdateResponseLog changes only the response log and updated_at
func (s *ComplaintStore) UpdateResponseLog(ctx context.Context, id string, responseLog string, updatedAt time.Time) error {
	return s.mutate(id, func(c *entities.Complaint) {
		c.ResponseLog = &responseLog
		c.UpdatedAt = updatedAt
	})
}

func (s *ComplaintStore) mutate(id string, fn func(*entities.Complaint)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.complaints[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("complaint with id %s not found", id))
	}
	fn(c)
	return nil
}

func matchesQuery(c *entities.Complaint, query string) bool {
	for _, field := range []string{c.Title, c.Description, c.Category} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func cloneComplaint(c *entities.Complaint) *entities.Complaint {
	cp := *c
	if c.ResponseLog != nil {
		responseLog := *c.ResponseLog
		cp.ResponseLog = &responseLog
	}
	return &cp
}
