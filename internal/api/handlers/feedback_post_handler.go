package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
)

const ratingRateLimitPrefix = "rating:rate:"

// FeedbackPostService defines the broadcast post operations used by the handler
type FeedbackPostService interface {
	Create(ctx context.Context, input services.CreateFeedbackPostInput) (*entities.FeedbackPost, error)
	Get(ctx context.Context, id string) (*entities.FeedbackPost, error)
	GetForRecipient(ctx context.Context, id, recipientID string) (*entities.FeedbackPost, error)
	List(ctx context.Context, limit, offset int) ([]*entities.FeedbackPost, error)
	ListVisibleTo(ctx context.Context, recipientID string) ([]*entities.FeedbackPost, error)
	Delete(ctx context.Context, id string) error
}

// RatingService defines the rating operations used by the handler
type RatingService interface {
	Submit(ctx context.Context, input services.SubmitRatingInput) (entities.RatingAggregate, error)
}

// RatingLimits bounds rating submissions per author
type RatingLimits struct {
	Limit  int
	Window time.Duration
}

// FeedbackPostHandler handles broadcast feedback requests and their ratings
type FeedbackPostHandler struct {
	posts   FeedbackPostService
	ratings RatingService
	limiter *submissionLimiter
	metrics *observability.Metrics
}

// NewFeedbackPostHandler creates a new feedback post handler. cache may be nil.
func NewFeedbackPostHandler(
	posts FeedbackPostService,
	ratings RatingService,
	cache providers.CacheProvider,
	limits RatingLimits,
	metrics *observability.Metrics,
) *FeedbackPostHandler {
	return &FeedbackPostHandler{
		posts:   posts,
		ratings: ratings,
		limiter: newSubmissionLimiter(cache, ratingRateLimitPrefix, limits.Limit, limits.Window),
		metrics: metrics,
	}
}

type createFeedbackPostRequest struct {
	Title        string   `json:"title" validate:"max=200"`
	Category     string   `json:"category" validate:"required,notblank,max=100"`
	Content      string   `json:"content" validate:"max=5000"`
	Audience     string   `json:"audience" validate:"max=16"`
	RecipientIDs []string `json:"recipient_ids" validate:"max=1000,dive,max=128"`
}

type submitRatingRequest struct {
	Score   int    `json:"score" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000,rating_comment"`
}

// feedbackPostResponse hides other students' ratings from non-admin callers
type feedbackPostResponse struct {
	ID           string                   `json:"id"`
	Title        string                   `json:"title"`
	Category     string                   `json:"category"`
	Content      string                   `json:"content"`
	Audience     entities.Audience        `json:"audience"`
	RecipientIDs []string                 `json:"recipient_ids,omitempty"`
	AuthorName   string                   `json:"author_name"`
	Aggregate    entities.RatingAggregate `json:"aggregate"`
	Ratings      []entities.Rating        `json:"ratings,omitempty"`
	MyRating     *entities.Rating         `json:"my_rating,omitempty"`
	HasRated     bool                     `json:"has_rated"`
	CreatedAt    time.Time                `json:"created_at"`
}

func newFeedbackPostResponse(p *entities.FeedbackPost, session entities.Session) feedbackPostResponse {
	resp := feedbackPostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Category:   p.Category,
		Content:    p.Content,
		Audience:   p.Audience,
		AuthorName: p.AuthorName,
		Aggregate:  p.Aggregate,
		CreatedAt:  p.CreatedAt,
	}
	if session.IsAdmin() {
		resp.RecipientIDs = p.RecipientIDs
		resp.Ratings = p.Ratings
		return resp
	}
	if rating, ok := p.RatingBy(session.UserID); ok {
		resp.MyRating = &rating
		resp.HasRated = true
	}
	return resp
}

func newFeedbackPostResponses(posts []*entities.FeedbackPost, session entities.Session) []feedbackPostResponse {
	out := make([]feedbackPostResponse, len(posts))
	for i, p := range posts {
		out[i] = newFeedbackPostResponse(p, session)
	}
	return out
}

// CreatePost handles POST /api/admin/feedback-posts
func (h *FeedbackPostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var payload createFeedbackPostRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	audience, ok := entities.ParseAudience(payload.Audience)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "audience must be all or specific")
		return
	}

	post, err := h.posts.Create(r.Context(), services.CreateFeedbackPostInput{
		Title:        payload.Title,
		Category:     payload.Category,
		Content:      payload.Content,
		Audience:     audience,
		RecipientIDs: payload.RecipientIDs,
		AuthorID:     session.UserID,
		AuthorName:   session.Name,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newFeedbackPostResponse(post, session))
}

// ListAllPosts handles GET /api/admin/feedback-posts
func (h *FeedbackPostHandler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	limit, offset := pageFromQuery(r)
	posts, err := h.posts.List(r.Context(), limit, offset)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts": newFeedbackPostResponses(posts, session),
		"count": len(posts),
	})
}

// DeletePost handles DELETE /api/admin/feedback-posts/{id}
func (h *FeedbackPostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMyPosts handles GET /api/feedback-posts
func (h *FeedbackPostHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	posts, err := h.posts.ListVisibleTo(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts": newFeedbackPostResponses(posts, session),
		"count": len(posts),
	})
}

// GetPost handles GET /api/feedback-posts/{id}
func (h *FeedbackPostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var (
		post *entities.FeedbackPost
		err  error
	)
	if session.IsAdmin() {
		post, err = h.posts.Get(r.Context(), r.PathValue("id"))
	} else {
		post, err = h.posts.GetForRecipient(r.Context(), r.PathValue("id"), session.UserID)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newFeedbackPostResponse(post, session))
}

// SubmitRating handles POST /api/feedback-posts/{id}/ratings
func (h *FeedbackPostHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var payload submitRatingRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	postID := r.PathValue("id")
	// Audience check happens before the limiter so hidden posts look absent.
	if _, err := h.posts.GetForRecipient(r.Context(), postID, session.UserID); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if allowed, retryAfter := h.limiter.allow(r.Context(), session.UserID); !allowed {
		observability.RecordRateLimited(r.Context(), h.metrics, "/api/feedback-posts/{id}/ratings")
		w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(retryAfter.Seconds())))))
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	aggregate, err := h.ratings.Submit(r.Context(), services.SubmitRatingInput{
		PostID:     postID,
		AuthorID:   session.UserID,
		AuthorName: session.Name,
		Score:      payload.Score,
		Comment:    payload.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"post_id":   postID,
		"aggregate": aggregate,
	})
}
