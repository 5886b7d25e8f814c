package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/campusvoice/portal/backend/internal/domain/entities"
	"github.com/campusvoice/portal/backend/internal/domain/repositories"
	tsclient "github.com/campusvoice/portal/backend/internal/infrastructure/clients/typesense"
)

const defaultPerPage = 50

// TypesenseAdapter implements complaint search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ComplaintSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts a complaint document
func (a *TypesenseAdapter) Index(ctx context.Context, complaint *entities.Complaint) error {
	_, err := a.client.Client().Collection(tsclient.ComplaintsCollection).Documents().Upsert(ctx, complaintDocument(complaint))
	if err != nil {
		return fmt.Errorf("failed to index complaint: %w", err)
	}
	return nil
}

// Delete removes a complaint from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(tsclient.ComplaintsCollection).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete complaint from index: %w", err)
	}
	return nil
}

// Search returns matching complaint IDs ordered by relevance
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.ComplaintFilter) ([]string, error) {
	result, err := a.client.Client().Collection(tsclient.ComplaintsCollection).Documents().Search(ctx, buildSearchParams(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to search complaints: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func complaintDocument(c *entities.Complaint) map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"title":       c.Title,
		"description": c.Description,
		"category":    c.Category,
		"status":      string(c.Status),
		"author_id":   c.AuthorID,
		"author_name": c.AuthorName,
		"created_at":  c.CreatedAt.Unix(),
	}
}

func buildSearchParams(filter repositories.ComplaintFilter) *api.SearchCollectionParams {
	q := strings.TrimSpace(filter.Query)
	if q == "" {
		q = "*"
	}

	perPage := filter.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("title,description,category,author_name"),
		Page:    pointer.Int(filter.Offset/perPage + 1),
		PerPage: pointer.Int(perPage),
	}

	var filters []string
	if filter.Status != "" {
		filters = append(filters, "status:="+string(filter.Status))
	}
	if filter.AuthorID != "" {
		filters = append(filters, "author_id:="+filter.AuthorID)
	}
	if len(filters) > 0 {
		params.FilterBy = pointer.String(strings.Join(filters, " && "))
	}
	return params
}
