package models_test

import (
	"testing"
	"time"

	"github.com/garnizeh/devbuddy/pkg/models"
)

func TestApplicationStatusLabel(t *testing.T) {
	tests := []struct {
		status models.ApplicationStatus
		want   string
	}{
		{models.ApplicationStatusApplied, "Applied"},
		{models.ApplicationStatusMarkedForInterview, "Marked For Interview"},
		{models.ApplicationStatusRejected, "Rejected"},
	}
	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Fatalf("Label(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
	if got := models.ProjectStatusInProgress.Label(); got != "In Progress" {
		t.Fatalf("unexpected project label %q", got)
	}
}

func TestEnumsValid(t *testing.T) {
	if models.ProjectStatus("archived").Valid() {
		t.Fatalf("archived should not be a valid project status")
	}
	if !models.ProjectStatusDraft.Valid() {
		t.Fatalf("draft is a valid project status")
	}
	if models.ApplicationStatus("pending").Valid() {
		t.Fatalf("pending should not be a valid application status")
	}
	if !models.ProficiencyExpert.Valid() || models.Proficiency("guru").Valid() {
		t.Fatalf("unexpected proficiency validity")
	}
	if models.UserType("admin").Valid() {
		t.Fatalf("admin should not be a valid user type")
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := models.Project{Deadline: now.Add(36 * time.Hour)}
	if got := p.DaysRemaining(now); got != 2 {
		t.Fatalf("DaysRemaining = %d, want 2", got)
	}

	p.Deadline = now.Add(-time.Hour)
	if got := p.DaysRemaining(now); got != 0 {
		t.Fatalf("DaysRemaining for passed deadline = %d, want 0", got)
	}
}

func TestUserRoles(t *testing.T) {
	var nobody *models.User
	if nobody.IsClient() || nobody.IsFreelancer() {
		t.Fatalf("nil user has no role")
	}
	u := &models.User{UserType: models.UserTypeFreelancer}
	if !u.IsFreelancer() || u.IsClient() {
		t.Fatalf("unexpected role checks for %+v", u)
	}
}
