package routes

import (
	"net/http"

	"github.com/campusvoice/portal/backend/internal/api/handlers"
	"github.com/campusvoice/portal/backend/internal/api/middleware"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	metaHandler         *handlers.MetaHandler
	complaintHandler    *handlers.ComplaintHandler
	feedbackPostHandler *handlers.FeedbackPostHandler
	notificationHandler *handlers.NotificationHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	metaHandler *handlers.MetaHandler,
	complaintHandler *handlers.ComplaintHandler,
	feedbackPostHandler *handlers.FeedbackPostHandler,
	notificationHandler *handlers.NotificationHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                 http.NewServeMux(),
		metaHandler:         metaHandler,
		complaintHandler:    complaintHandler,
		feedbackPostHandler: feedbackPostHandler,
		notificationHandler: notificationHandler,
		cacheMiddleware:     cacheMiddleware,
		metrics:             metrics,
		allowedOrigins:      allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	authed := middleware.RequireSession
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireRole(entities.RoleAdmin, next)
	}

	// Meta endpoints
	r.mux.HandleFunc("GET /health", r.metaHandler.Health)
	r.mux.HandleFunc("GET /api/categories", r.metaHandler.Categories)

	// Student complaint endpoints
	r.mux.HandleFunc("POST /api/complaints", authed(r.complaintHandler.CreateComplaint))
	r.mux.HandleFunc("GET /api/complaints", authed(r.complaintHandler.ListMyComplaints))
	r.mux.HandleFunc("GET /api/complaints/{id}", authed(r.complaintHandler.GetComplaint))

	// Complaint triage
	r.mux.HandleFunc("GET /api/admin/complaints", admin(r.complaintHandler.ListComplaints))
	r.mux.HandleFunc("PATCH /api/admin/complaints/{id}/status", admin(r.complaintHandler.ChangeStatus))
	r.mux.HandleFunc("POST /api/admin/complaints/{id}/responses", admin(r.complaintHandler.AddResponse))

	// Feedback posts and ratings
	r.mux.HandleFunc("GET /api/feedback-posts", authed(r.feedbackPostHandler.ListMyPosts))
	r.mux.HandleFunc("GET /api/feedback-posts/{id}", authed(r.feedbackPostHandler.GetPost))
	r.mux.HandleFunc("POST /api/feedback-posts/{id}/ratings", authed(r.feedbackPostHandler.SubmitRating))
	r.mux.HandleFunc("GET /api/admin/feedback-posts", admin(r.feedbackPostHandler.ListAllPosts))
	r.mux.HandleFunc("POST /api/admin/feedback-posts", admin(r.feedbackPostHandler.CreatePost))
	r.mux.HandleFunc("DELETE /api/admin/feedback-posts/{id}", admin(r.feedbackPostHandler.DeletePost))

	// Notification feed
	r.mux.HandleFunc("GET /api/notifications", authed(r.notificationHandler.GetFeed))
	r.mux.HandleFunc("POST /api/notifications/{id}/seen", authed(r.notificationHandler.MarkSeen))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Session must be resolved before logging and tracing read it
	handler = middleware.SessionMiddleware(handler)

	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
