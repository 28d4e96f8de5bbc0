package marketplace

import (
	"context"
	"fmt"
	"net/http"

	"github.com/garnizeh/devbuddy/pkg/models"
)

func (c *Client) Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &res); err != nil {
		return models.AuthResult{}, err
	}
	return res, nil
}

func (c *Client) Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &res); err != nil {
		return models.AuthResult{}, err
	}
	return res, nil
}

// Me resolves the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var res struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// UpdateProfile calls PATCH /users/profile.
func (c *Client) UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPatch, "/users/profile", nil, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListSkills(ctx context.Context) ([]models.Skill, error) {
	var skills []models.Skill
	if err := c.do(ctx, http.MethodGet, "/skills", nil, nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (c *Client) ListUserSkills(ctx context.Context) ([]models.UserSkill, error) {
	var skills []models.UserSkill
	if err := c.do(ctx, http.MethodGet, "/user/skills", nil, nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

func (c *Client) AddUserSkill(ctx context.Context, in models.UserSkillInput) (*models.UserSkill, error) {
	var us models.UserSkill
	if err := c.do(ctx, http.MethodPost, "/user/skills", nil, in, &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (c *Client) RemoveUserSkill(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/skills/%d", id), nil, nil, nil)
}
