package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// ListProjects calls GET /projects.
func (c *Client) ListProjects(ctx context.Context, q models.ProjectQuery) (models.ProjectPage, error) {
	var page models.ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects", projectParams(q), nil, &page); err != nil {
		return models.ProjectPage{}, err
	}
	if page.Projects == nil {
		page.Projects = []models.Project{}
	}
	return page, nil
}

func projectParams(q models.ProjectQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != nil {
		v.Set("status", string(*q.Status))
	}
	if q.BudgetMin != nil {
		v.Set("budgetMin", strconv.FormatFloat(*q.BudgetMin, 'f', -1, 64))
	}
	if q.BudgetMax != nil {
		v.Set("budgetMax", strconv.FormatFloat(*q.BudgetMax, 'f', -1, 64))
	}
	if q.HasDeadlineBefore != nil {
		v.Set("hasDeadlineBefore", q.HasDeadlineBefore.UTC().Format(time.RFC3339))
	}
	if q.UserID != nil {
		v.Set("userId", strconv.FormatInt(*q.UserID, 10))
	}
	return v
}

// GetProject calls GET /projects/{id}. A missing project yields nil, nil.
func (c *Client) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	err := c.do(ctx, http.MethodGet, "/projects/"+strconv.FormatInt(id, 10), nil, nil, &p)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject calls POST /projects. The deadline is sent in UTC.
func (c *Client) CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.Project, error) {
	in.Deadline = in.Deadline.UTC()
	if in.Skills == nil {
		in.Skills = []int64{}
	}
	var p models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
