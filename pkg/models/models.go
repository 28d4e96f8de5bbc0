package models

import (
	"math"
	"strings"
	"time"
)

// Domain models matching the wire format of the marketplace API.

type UserType string

const (
	UserTypeClient     UserType = "client"
	UserTypeFreelancer UserType = "freelancer"
)

func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeFreelancer
}

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusPublished  ProjectStatus = "published"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// ProjectStatuses lists every project status in lifecycle order.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusDraft,
	ProjectStatusPublished,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s ProjectStatus) Label() string { return label(string(s)) }

type ApplicationStatus string

const (
	ApplicationStatusApplied            ApplicationStatus = "applied"
	ApplicationStatusMarkedForInterview ApplicationStatus = "marked_for_interview"
	ApplicationStatusAccepted           ApplicationStatus = "accepted"
	ApplicationStatusRejected           ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn          ApplicationStatus = "withdrawn"
)

var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApplied,
	ApplicationStatusMarkedForInterview,
	ApplicationStatusAccepted,
	ApplicationStatusRejected,
	ApplicationStatusWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label renders the status for display: "marked_for_interview" becomes
// "Marked For Interview".
func (s ApplicationStatus) Label() string { return label(string(s)) }

type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyExpert       Proficiency = "expert"
)

func (p Proficiency) Valid() bool {
	return p == ProficiencyBeginner || p == ProficiencyIntermediate || p == ProficiencyExpert
}

func label(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

type Project struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	BudgetMin       float64       `json:"budgetMin"`
	BudgetMax       float64       `json:"budgetMax"`
	Deadline        time.Time     `json:"deadline"`
	Status          ProjectStatus `json:"status"`
	Skills          []int64       `json:"skills"`
	ClientID        int64         `json:"clientId"`
	ApplicantsCount int           `json:"applicantsCount"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// DaysRemaining returns the whole days left until the deadline, rounded up.
// Zero means the deadline has passed.
func (p Project) DaysRemaining(now time.Time) int {
	d := p.Deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

type ProjectApplication struct {
	ID                int64             `json:"id"`
	ProjectID         int64             `json:"projectId"`
	Project           *Project          `json:"project,omitempty"`
	FreelancerID      int64             `json:"freelancerId"`
	CoverLetter       string            `json:"coverLetter"`
	ProposedRate      float64           `json:"proposedRate"`
	EstimatedDuration int               `json:"estimatedDuration"`
	Status            ApplicationStatus `json:"status"`
	RejectionReason   string            `json:"rejectionReason,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Active reports whether the application is still under consideration.
func (a ProjectApplication) Active() bool {
	return a.Status == ApplicationStatusApplied || a.Status == ApplicationStatusMarkedForInterview
}

type Skill struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

type UserSkill struct {
	ID               int64       `json:"id"`
	UserID           int64       `json:"userId"`
	SkillID          int64       `json:"skillId"`
	ProficiencyLevel Proficiency `json:"proficiencyLevel"`
	Skill            *Skill      `json:"Skill,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type User struct {
	ID                 int64       `json:"id"`
	Email              string      `json:"email"`
	Name               string      `json:"name"`
	UserType           UserType    `json:"userType"`
	Title              string      `json:"title,omitempty"`
	Bio                string      `json:"bio,omitempty"`
	HourlyRate         *float64    `json:"hourlyRate,omitempty"`
	LinkedinURL        string      `json:"linkedinUrl,omitempty"`
	GithubURL          string      `json:"githubUrl,omitempty"`
	ExperienceInMonths *int        `json:"experienceInMonths,omitempty"`
	Skills             []UserSkill `json:"skills,omitempty"`
}

func (u *User) IsClient() bool     { return u != nil && u.UserType == UserTypeClient }
func (u *User) IsFreelancer() bool { return u != nil && u.UserType == UserTypeFreelancer }
