package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campusvoice/portal/backend/internal/application/services"
	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
)

// ComplaintService defines the complaint operations used by the handler
type ComplaintService interface {
	Create(ctx context.Context, input services.CreateComplaintInput) (*entities.Complaint, error)
	GetForSession(ctx context.Context, id string, session entities.Session) (*entities.Complaint, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*entities.Complaint, error)
	ListForAdmin(ctx context.Context, filter repositories.ComplaintFilter) ([]*entities.Complaint, error)
}

// ComplaintTriageService defines the administrator triage operations
type ComplaintTriageService interface {
	ChangeStatus(ctx context.Context, complaintID, status string) error
	AddResponse(ctx context.Context, complaintID, text string) error
}

// ComplaintHandler handles complaint filing and triage
type ComplaintHandler struct {
	complaints ComplaintService
	triage     ComplaintTriageService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaints ComplaintService, triage ComplaintTriageService) *ComplaintHandler {
	return &ComplaintHandler{
		complaints: complaints,
		triage:     triage,
	}
}

type createComplaintRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Category    string `json:"category" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"required,notblank,max=5000"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,notblank,max=32"`
}

type addResponseRequest struct {
	Text string `json:"text" validate:"required,notblank,max=5000"`
}

// complaintResponse exposes the decoded reply messages next to the stored log
type complaintResponse struct {
	ID               string                   `json:"id"`
	Title            string                   `json:"title"`
	Category         string                   `json:"category"`
	Description      string                   `json:"description"`
	AuthorID         string                   `json:"author_id"`
	AuthorName       string                   `json:"author_name"`
	AuthorExternalID string                   `json:"author_external_id,omitempty"`
	Status           entities.ComplaintStatus `json:"status"`
	StatusLabel      string                   `json:"status_label"`
	Responses        []string                 `json:"responses"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

func newComplaintResponse(c *entities.Complaint) complaintResponse {
	return complaintResponse{
		ID:               c.ID,
		Title:            c.Title,
		Category:         c.Category,
		Description:      c.Description,
		AuthorID:         c.AuthorID,
		AuthorName:       c.AuthorName,
		AuthorExternalID: c.AuthorExternalID,
		Status:           c.Status,
		StatusLabel:      c.Status.Label(),
		Responses:        c.Responses().Messages(),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func newComplaintResponses(complaints []*entities.Complaint) []complaintResponse {
	out := make([]complaintResponse, len(complaints))
	for i, c := range complaints {
		out[i] = newComplaintResponse(c)
	}
	return out
}

// CreateComplaint handles POST /api/complaints
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var payload createComplaintRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	complaint, err := h.complaints.Create(r.Context(), services.CreateComplaintInput{
		Title:            payload.Title,
		Category:         payload.Category,
		Description:      payload.Description,
		AuthorID:         session.UserID,
		AuthorName:       session.Name,
		AuthorExternalID: session.ExternalID,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newComplaintResponse(complaint))
}

// ListMyComplaints handles GET /api/complaints
func (h *ComplaintHandler) ListMyComplaints(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	complaints, err := h.complaints.ListByAuthor(r.Context(), session.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": newComplaintResponses(complaints),
		"count":      len(complaints),
	})
}

// GetComplaint handles GET /api/complaints/{id}
func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	complaint, err := h.complaints.GetForSession(r.Context(), r.PathValue("id"), session)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newComplaintResponse(complaint))
}

// ListComplaints handles GET /api/admin/complaints?status=&q=
func (h *ComplaintHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageFromQuery(r)
	filter := repositories.ComplaintFilter{
		Query:  strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	}

	if raw := r.URL.Query().Get("status"); raw != "" && !strings.EqualFold(raw, "all") {
		status, ok := entities.ParseComplaintStatus(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "unknown complaint status: "+raw)
			return
		}
		filter.Status = status
	}

	complaints, err := h.complaints.ListForAdmin(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": newComplaintResponses(complaints),
		"count":      len(complaints),
	})
}

// ChangeStatus handles PATCH /api/admin/complaints/{id}/status
func (h *ComplaintHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var payload changeStatusRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.triage.ChangeStatus(r.Context(), r.PathValue("id"), payload.Status); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddResponse handles POST /api/admin/complaints/{id}/responses
func (h *ComplaintHandler) AddResponse(w http.ResponseWriter, r *http.Request) {
	var payload addResponseRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.triage.AddResponse(r.Context(), r.PathValue("id"), payload.Text); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
