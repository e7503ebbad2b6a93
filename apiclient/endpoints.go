package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/platform-smith-labs/siteedge/core"
	"github.com/platform-smith-labs/siteedge/middleware/validation"
)

// ListProjects returns every published project.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	list, err := Do[ListResponse[Project]](ctx, c, "/projects", RequestOptions{Route: "/projects"})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// GetProject returns the project with the given slug.
func (c *Client) GetProject(ctx context.Context, slug string) (Project, error) {
	if strings.TrimSpace(slug) == "" {
		return Project{}, core.NewAPIError(http.StatusBadRequest, "Project slug is required")
	}
	return Do[Project](ctx, c, "/projects/"+url.PathEscape(slug), RequestOptions{Route: "/projects/{slug}"})
}

// ListProjectsByCategory returns the projects filed under category.
func (c *Client) ListProjectsByCategory(ctx context.Context, category string) ([]Project, error) {
	if strings.TrimSpace(category) == "" {
		return nil, core.NewAPIError(http.StatusBadRequest, "Project category is required")
	}
	list, err := Do[ListResponse[Project]](ctx, c, "/projects/category/"+url.PathEscape(category), RequestOptions{
		Route: "/projects/category/{category}",
	})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// SubmitConsultation validates req and posts it. The backend answers 201
// with the created record.
func (c *Client) SubmitConsultation(ctx context.Context, req ConsultationRequest) (Consultation, error) {
	if err := validation.Struct(req); err != nil {
		return Consultation{}, validation.ToAPIError(err, "Invalid consultation request")
	}
	return Do[Consultation](ctx, c, "/consultations", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
		Route:  "/consultations",
	})
}

// GetConfig returns one public configuration entry.
func (c *Client) GetConfig(ctx context.Context, key string) (ConfigEntry, error) {
	if strings.TrimSpace(key) == "" {
		return ConfigEntry{}, core.NewAPIError(http.StatusBadRequest, "Config key is required")
	}
	return Do[ConfigEntry](ctx, c, "/config/"+url.PathEscape(key), RequestOptions{Route: "/config/{key}"})
}

// GetConfigs returns the entries for keys in one call. With no keys it
// returns nothing without calling the backend.
func (c *Client) GetConfigs(ctx context.Context, keys ...string) ([]ConfigEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := url.Values{"keys": {strings.Join(keys, ",")}}
	list, err := Do[ListResponse[ConfigEntry]](ctx, c, "/config?"+query.Encode(), RequestOptions{Route: "/config"})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// Health asks the backend for its health report.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	return Do[HealthStatus](ctx, c, "/health", RequestOptions{Route: "/health"})
}
