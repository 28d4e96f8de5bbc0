package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// ListApplications calls GET /applications. Without a project id the API
// returns the caller's own applications. A 404 is an empty list.
func (c *Client) ListApplications(ctx context.Context, projectID *int64) ([]models.ProjectApplication, error) {
	var q url.Values
	if projectID != nil {
		q = url.Values{"projectId": {strconv.FormatInt(*projectID, 10)}}
	}

	var apps []models.ProjectApplication
	err := c.do(ctx, http.MethodGet, "/applications", q, nil, &apps)
	if errors.Is(err, ErrNotFound) {
		return []models.ProjectApplication{}, nil
	}
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []models.ProjectApplication{}
	}
	return apps, nil
}

// Apply calls POST /applications/projects/{projectId}/apply.
func (c *Client) Apply(ctx context.Context, projectID int64, in models.ApplyInput) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/applications/projects/%d/apply", projectID), nil, in, nil)
}

// UpdateApplicationStatus calls PUT /applications/{id}/status.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID int64, u models.StatusUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d/status", applicationID), nil, u, nil)
}
