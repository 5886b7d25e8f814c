package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/campusvoice/portal/backend/internal/api/middleware"
	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	apperrors "github.com/campusvoice/portal/backend/pkg/errors"
)

var (
	student = entities.Session{UserID: "s1", Name: "Asha", Role: entities.RoleStudent, ExternalID: "21BCE1001"}
	admin   = entities.Session{UserID: "a1", Name: "Dean", Role: entities.RoleAdmin}
)

func newRequest(method, target, body string, session *entities.Session) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if session != nil {
		req = req.WithContext(middleware.WithSession(req.Context(), *session))
	}
	return req
}

// serve routes the request through a mux so path values are populated
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

type stubComplaintService struct {
	created  []services.CreateComplaintInput
	filter   repositories.ComplaintFilter
	byID     map[string]*entities.Complaint
	listErr  error
	authored []*entities.Complaint
}

func (s *stubComplaintService) Create(_ context.Context, input services.CreateComplaintInput) (*entities.Complaint, error) {
	s.created = append(s.created, input)
	return &entities.Complaint{
		ID:          "c-new",
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		AuthorID:    input.AuthorID,
		AuthorName:  input.AuthorName,
		Status:      entities.ComplaintStatusPending,
	}, nil
}

func (s *stubComplaintService) GetForSession(_ context.Context, id string, session entities.Session) (*entities.Complaint, error) {
	c, ok := s.byID[id]
	if !ok || (!session.IsAdmin() && c.AuthorID != session.UserID) {
		return nil, apperrors.NewNotFoundError("complaint not found")
	}
	return c, nil
}

func (s *stubComplaintService) ListByAuthor(_ context.Context, authorID string) ([]*entities.Complaint, error) {
	return s.authored, nil
}

func (s *stubComplaintService) ListForAdmin(_ context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error) {
	s.filter = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []*entities.Complaint{}, nil
}

type stubTriageService struct {
	statuses  map[string]string
	responses map[string][]string
	err       error
}

func newStubTriageService() *stubTriageService {
	return &stubTriageService{statuses: map[string]string{}, responses: map[string][]string{}}
}

func (s *stubTriageService) ChangeStatus(_ context.Context, id, status string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := entities.ParseComplaintStatus(status); !ok {
		return apperrors.NewValidationError("unknown complaint status: " + status)
	}
	s.statuses[id] = status
	return nil
}

func (s *stubTriageService) AddResponse(_ context.Context, id, text string) error {
	if s.err != nil {
		return s.err
	}
	s.responses[id] = append(s.responses[id], text)
	return nil
}

type stubFeedbackPostService struct {
	mu      sync.Mutex
	posts   map[string]*entities.FeedbackPost
	created []services.CreateFeedbackPostInput
	deleted []string
}

func newStubFeedbackPostService(posts ...*entities.FeedbackPost) *stubFeedbackPostService {
	s := &stubFeedbackPostService{posts: map[string]*entities.FeedbackPost{}}
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	return s
}

func (s *stubFeedbackPostService) Create(_ context.Context, input services.CreateFeedbackPostInput) (*entities.FeedbackPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, input)
	title := input.Title
	if title == "" {
		title = entities.DefaultPostTitle(input.Category)
	}
	return &entities.FeedbackPost{ID: "p-new", Title: title, Category: input.Category, Audience: input.Audience, RecipientIDs: input.RecipientIDs, Aggregate: entities.EmptyRatingAggregate()}, nil
}

func (s *stubFeedbackPostService) Get(_ context.Context, id string) (*entities.FeedbackPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("feedback post not found")
	}
	return p, nil
}

func (s *stubFeedbackPostService) GetForRecipient(ctx context.Context, id, recipientID string) (*entities.FeedbackPost, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsVisibleTo(recipientID) {
		return nil, apperrors.NewNotFoundError("feedback post not found")
	}
	return p, nil
}

func (s *stubFeedbackPostService) List(_ context.Context, limit, offset int) ([]*entities.FeedbackPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.FeedbackPost, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubFeedbackPostService) ListVisibleTo(_ context.Context, recipientID string) ([]*entities.FeedbackPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.FeedbackPost
	for _, p := range s.posts {
		if p.IsVisibleTo(recipientID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubFeedbackPostService) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return apperrors.NewNotFoundError("feedback post not found")
	}
	delete(s.posts, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubRatingService struct {
	submitted []services.SubmitRatingInput
	err       error
}

func (s *stubRatingService) Submit(_ context.Context, input services.SubmitRatingInput) (entities.RatingAggregate, error) {
	if s.err != nil {
		return entities.RatingAggregate{}, s.err
	}
	s.submitted = append(s.submitted, input)
	return entities.ComputeRatingAggregate([]entities.Rating{{AuthorID: input.AuthorID, Score: input.Score}}), nil
}

type stubFeedService struct {
	recipient string
	now       time.Time
	seen      []string
	feed      *entities.NotificationFeed
	err       error
}

func (s *stubFeedService) BuildFeed(_ context.Context, recipientID string, now time.Time) (*entities.NotificationFeed, error) {
	s.recipient = recipientID
	s.now = now
	if s.err != nil {
		return nil, s.err
	}
	return s.feed, nil
}

func (s *stubFeedService) MarkSeen(_ context.Context, recipientID, notificationID string) error {
	s.seen = append(s.seen, recipientID+"/"+notificationID)
	return s.err
}
