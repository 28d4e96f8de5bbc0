package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// ErrInvalidCredentials is returned by AuthRepo for unknown users or a wrong
// password. It wraps marketplace.ErrUnauthorized like a 401 from the API.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", marketplace.ErrUnauthorized)

// Test helpers and mocks
type Mocks struct {
	Projects     *ProjectRepo
	Applications *ApplicationRepo
	Skills       *SkillRepo
	Auth         *AuthRepo
	Tokens       *TokenStore
}

func NewMocks() *Mocks {
	return &Mocks{
		Projects:     &ProjectRepo{},
		Applications: &ApplicationRepo{},
		Skills:       &SkillRepo{},
		Auth:         &AuthRepo{},
		Tokens:       &TokenStore{},
	}
}

var (
	_ repository.ProjectRepo     = (*ProjectRepo)(nil)
	_ repository.ApplicationRepo = (*ApplicationRepo)(nil)
	_ repository.SkillRepo       = (*SkillRepo)(nil)
	_ repository.AuthRepo        = (*AuthRepo)(nil)
	_ repository.ProfileRepo     = (*AuthRepo)(nil)
	_ repository.TokenStore      = (*TokenStore)(nil)
)

// ProjectRepo serves Projects from memory. When ListFunc is set it replaces
// the built-in filtering, which lets tests block or reorder responses.
type ProjectRepo struct {
	mu        sync.Mutex
	Projects  []models.Project
	ListErr   error
	CreateErr error
	ListFunc  func(ctx context.Context, q models.ProjectQuery) (models.ProjectPage, error)
	Queries   []models.ProjectQuery
	Created   []models.CreateProjectInput
}

func (m *ProjectRepo) ListProjects(ctx context.Context, q models.ProjectQuery) (models.ProjectPage, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	fn := m.ListFunc
	err := m.ListErr
	all := append([]models.Project(nil), m.Projects...)
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	if err != nil {
		return models.ProjectPage{}, err
	}

	var matched []models.Project
	for _, p := range all {
		if q.UserID != nil && p.ClientID != *q.UserID {
			continue
		}
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		if q.BudgetMin != nil && p.BudgetMax < *q.BudgetMin {
			continue
		}
		if q.BudgetMax != nil && p.BudgetMin > *q.BudgetMax {
			continue
		}
		if q.HasDeadlineBefore != nil && !p.Deadline.Before(*q.HasDeadlineBefore) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, p)
	}

	return Paginate(matched, q.Page, q.Limit), nil
}

// Paginate slices projects into a ProjectPage the way the API does.
func Paginate(all []models.Project, page, limit int) models.ProjectPage {
	if limit <= 0 {
		limit = 9
	}
	if page <= 0 {
		page = 1
	}
	total := len(all)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return models.ProjectPage{
		Projects:   append([]models.Project{}, all[start:end]...),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}

func (m *ProjectRepo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Projects {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *ProjectRepo) CreateProject(ctx context.Context, in models.CreateProjectInput) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.Created = append(m.Created, in)
	p := models.Project{
		ID:          int64(len(m.Projects) + 1),
		Title:       in.Title,
		Description: in.Description,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		Deadline:    in.Deadline,
		Status:      models.ProjectStatusPublished,
		Skills:      in.Skills,
		CreatedAt:   time.Now().UTC(),
	}
	m.Projects = append(m.Projects, p)
	return &p, nil
}

// QueryCount returns how many list requests were received.
func (m *ProjectRepo) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// LastQuery returns the most recent list request.
func (m *ProjectRepo) LastQuery() models.ProjectQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Queries) == 0 {
		return models.ProjectQuery{}
	}
	return m.Queries[len(m.Queries)-1]
}

// ApplicationRepo keeps applications in memory. Mine lists what the caller
// (FreelancerID) has submitted.
type ApplicationRepo struct {
	mu           sync.Mutex
	Apps         []models.ProjectApplication
	FreelancerID int64
	ListErr      error
	ApplyErr     error
	UpdateErr    error
	ListCalls    int
	ApplyCalls   []models.ApplyInput
	Updates      []models.StatusUpdate
}

func (m *ApplicationRepo) ListApplications(ctx context.Context, projectID *int64) ([]models.ProjectApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := []models.ProjectApplication{}
	for _, a := range m.Apps {
		if projectID != nil && a.ProjectID != *projectID {
			continue
		}
		if projectID == nil && a.FreelancerID != m.FreelancerID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *ApplicationRepo) Apply(ctx context.Context, projectID int64, in models.ApplyInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApplyCalls = append(m.ApplyCalls, in)
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	m.Apps = append(m.Apps, models.ProjectApplication{
		ID:                int64(len(m.Apps) + 1),
		ProjectID:         projectID,
		FreelancerID:      m.FreelancerID,
		CoverLetter:       in.CoverLetter,
		ProposedRate:      in.ProposedRate,
		EstimatedDuration: in.EstimatedDuration,
		Status:            models.ApplicationStatusApplied,
	})
	return nil
}

func (m *ApplicationRepo) UpdateApplicationStatus(ctx context.Context, applicationID int64, u models.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates = append(m.Updates, u)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Apps {
		if m.Apps[i].ID == applicationID {
			m.Apps[i].Status = u.Status
			m.Apps[i].RejectionReason = u.RejectionReason
		}
	}
	return nil
}

// Calls reports list calls, submissions and status updates received.
func (m *ApplicationRepo) Calls() (lists, applies, updates int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls, len(m.ApplyCalls), len(m.Updates)
}

type SkillRepo struct {
	mu         sync.Mutex
	Catalog    []models.Skill
	UserSkills []models.UserSkill
	ListErr    error
	ListCalls  int
}

func (m *SkillRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]models.Skill{}, m.Catalog...), nil
}

func (m *SkillRepo) ListUserSkills(ctx context.Context) ([]models.UserSkill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserSkill{}, m.UserSkills...), nil
}

func (m *SkillRepo) AddUserSkill(ctx context.Context, in models.UserSkillInput) (*models.UserSkill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	us := models.UserSkill{ID: int64(len(m.UserSkills) + 1), SkillID: in.SkillID, ProficiencyLevel: in.ProficiencyLevel}
	for _, s := range m.Catalog {
		if s.ID == in.SkillID {
			cp := s
			us.Skill = &cp
		}
	}
	m.UserSkills = append(m.UserSkills, us)
	return &us, nil
}

func (m *SkillRepo) RemoveUserSkill(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.UserSkills[:0]
	for _, us := range m.UserSkills {
		if us.ID != id {
			out = append(out, us)
		}
	}
	m.UserSkills = out
	return nil
}

// AuthRepo authenticates against Users keyed by email. Password holds the
// single accepted password. Gate, when non-nil, blocks Login until closed.
type AuthRepo struct {
	mu       sync.Mutex
	Users    map[string]models.User
	Password string
	Token    string
	MeUser   *models.User
	MeErr    error
	LoginErr error
	Gate     chan struct{}
	MeCalls  int
	Profile  []models.UpdateProfileInput
}

func (m *AuthRepo) Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error) {
	m.mu.Lock()
	gate := m.Gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.AuthResult{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoginErr != nil {
		return models.AuthResult{}, m.LoginErr
	}
	u, ok := m.Users[in.Email]
	if !ok || in.Password != m.Password {
		return models.AuthResult{}, ErrInvalidCredentials
	}
	m.MeUser = &u
	return models.AuthResult{Token: m.token(), User: u}, nil
}

func (m *AuthRepo) Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Users == nil {
		m.Users = map[string]models.User{}
	}
	u := models.User{
		ID:                 int64(len(m.Users) + 1),
		Email:              in.Email,
		Name:               in.Name,
		UserType:           in.UserType,
		Title:              in.Title,
		Bio:                in.Bio,
		HourlyRate:         in.HourlyRate,
		LinkedinURL:        in.LinkedinURL,
		GithubURL:          in.GithubURL,
		ExperienceInMonths: in.ExperienceInMonths,
	}
	m.Users[in.Email] = u
	m.Password = in.Password
	m.MeUser = &u
	return models.AuthResult{Token: m.token(), User: u}, nil
}

func (m *AuthRepo) Me(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MeCalls++
	if m.MeErr != nil {
		return nil, m.MeErr
	}
	return m.MeUser, nil
}

func (m *AuthRepo) UpdateProfile(ctx context.Context, in models.UpdateProfileInput) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Profile = append(m.Profile, in)
	if m.MeUser == nil {
		return nil, ErrInvalidCredentials
	}
	u := *m.MeUser
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Title != nil {
		u.Title = *in.Title
	}
	m.MeUser = &u
	return &u, nil
}

func (m *AuthRepo) token() string {
	if m.Token != "" {
		return m.Token
	}
	return "opaque-token"
}

type TokenStore struct {
	mu      sync.Mutex
	Token   string
	LoadErr error
}

func (m *TokenStore) LoadToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Token, m.LoadErr
}

func (m *TokenStore) SaveToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = token
	return nil
}

func (m *TokenStore) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = ""
	return nil
}

// Current returns the stored token.
func (m *TokenStore) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Token
}
