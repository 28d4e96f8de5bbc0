package repository

import (
	"context"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

// Repository interfaces for the marketplace collaborators. These are the
// public contracts consumers depend on; the remote implementation lives in
// pkg/marketplace and local storage lives under internal/.

type ProjectRepo interface {
	ListProjects(ctx context.Context, q models.ProjectQuery) (models.ProjectPage, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.Project, error)
}

type ApplicationRepo interface {
	// ListApplications returns the applications of a project, or the
	// caller's own applications when projectID is nil.
	ListApplications(ctx context.Context, projectID *int64) ([]models.ProjectApplication, error)
	Apply(ctx context.Context, projectID int64, in models.ApplyInput) error
	UpdateApplicationStatus(ctx context.Context, applicationID int64, u models.StatusUpdate) error
}

type SkillRepo interface {
	ListSkills(ctx context.Context) ([]models.Skill, error)
	ListUserSkills(ctx context.Context) ([]models.UserSkill, error)
	AddUserSkill(ctx context.Context, in models.UserSkillInput) (*models.UserSkill, error)
	RemoveUserSkill(ctx context.Context, id int64) error
}

type AuthRepo interface {
	Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error)
	Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error)
	Me(ctx context.Context) (*models.User, error)
}

type ProfileRepo interface {
	UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error)
}

// TokenStore persists the bearer credential between runs. LoadToken returns
// an empty string when nothing is stored.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// SkillCache keeps a local copy of the global skill catalog.
type SkillCache interface {
	CachedSkills(ctx context.Context) ([]models.Skill, time.Time, error)
	ReplaceSkills(ctx context.Context, skills []models.Skill) error
}
