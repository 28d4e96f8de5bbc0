package models

import "time"

// ProjectQuery carries the listing parameters sent to GET /projects.
// Nil pointers are omitted from the request.
type ProjectQuery struct {
	Page              int
	Limit             int
	Search            string
	Status            *ProjectStatus
	BudgetMin         *float64
	BudgetMax         *float64
	HasDeadlineBefore *time.Time
	UserID            *int64
}

type ProjectPage struct {
	Projects   []Project `json:"projects"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
}

type CreateProjectInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BudgetMin   float64   `json:"budgetMin"`
	BudgetMax   float64   `json:"budgetMax"`
	Deadline    time.Time `json:"deadline"`
	Skills      []int64   `json:"skills"`
}

type ApplyInput struct {
	CoverLetter       string  `json:"coverLetter"`
	ProposedRate      float64 `json:"proposedRate"`
	EstimatedDuration int     `json:"estimatedDuration"`
}

type StatusUpdate struct {
	Status          ApplicationStatus `json:"status"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	UserType           UserType `json:"userType"`
	Title              string   `json:"title,omitempty"`
	Bio                string   `json:"bio,omitempty"`
	HourlyRate         *float64 `json:"hourlyRate,omitempty"`
	LinkedinURL        string   `json:"linkedinUrl,omitempty"`
	GithubURL          string   `json:"githubUrl,omitempty"`
	ExperienceInMonths *int     `json:"experienceInMonths,omitempty"`
}

type UpdateProfileInput struct {
	Name               *string  `json:"name,omitempty"`
	Email              *string  `json:"email,omitempty"`
	Title              *string  `json:"title,omitempty"`
	Bio                *string  `json:"bio,omitempty"`
	HourlyRate         *float64 `json:"hourlyRate,omitempty"`
	LinkedinURL        *string  `json:"linkedinUrl,omitempty"`
	GithubURL          *string  `json:"githubUrl,omitempty"`
	ExperienceInMonths *int     `json:"experienceInMonths,omitempty"`
}

type UserSkillInput struct {
	SkillID          int64       `json:"skillId"`
	ProficiencyLevel Proficiency `json:"proficiencyLevel"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
