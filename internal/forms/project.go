package forms

import (
	"strings"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

var projectForm = load("create_project", map[string]string{
	"title":       "Title is required",
	"description": "Description must be at least 50 characters",
	"budgetMin":   "Minimum budget must be 0 or more",
	"budgetMax":   "Maximum budget must be 0 or more",
	"skills":      "Select at least one skill",
})

// ValidateProject checks a new project. now is the reference for the deadline.
func ValidateProject(in models.CreateProjectInput, now time.Time) error {
	errs := Errors{}
	skills := in.Skills
	if skills == nil {
		skills = []int64{}
	}
	projectForm.check(map[string]any{
		"title":       strings.TrimSpace(in.Title),
		"description": strings.TrimSpace(in.Description),
		"budgetMin":   in.BudgetMin,
		"budgetMax":   in.BudgetMax,
		"skills":      skills,
	}, errs)

	if in.BudgetMin > in.BudgetMax {
		errs.add("budgetMin", "Minimum budget cannot be greater than maximum budget")
	}
	switch {
	case in.Deadline.IsZero():
		errs.add("deadline", "Deadline is required")
	case !in.Deadline.After(now):
		errs.add("deadline", "Deadline must be in the future")
	}
	return errs.orNil()
}

var applicationForm = load("application", map[string]string{
	"coverLetter":       "Cover letter must be at least 50 characters",
	"proposedRate":      "Proposed rate must be a positive number",
	"estimatedDuration": "Estimated duration must be at least 1 day",
})

// ValidateApplication checks an application against the project it targets:
// the proposed rate must sit inside the project's budget.
func ValidateApplication(in models.ApplyInput, p models.Project) error {
	errs := Errors{}
	// bounds first so the message names the limit that was missed
	switch {
	case in.ProposedRate < p.BudgetMin:
		errs["proposedRate"] = "Proposed rate must be at least " + amount(p.BudgetMin)
	case in.ProposedRate > p.BudgetMax:
		errs["proposedRate"] = "Proposed rate must be within the project budget of " + amount(p.BudgetMax)
	}
	applicationForm.check(map[string]any{
		"coverLetter":       strings.TrimSpace(in.CoverLetter),
		"proposedRate":      in.ProposedRate,
		"estimatedDuration": in.EstimatedDuration,
	}, errs)
	return errs.orNil()
}
