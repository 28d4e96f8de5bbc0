package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository/mock"
)

type clientUser struct{}

func (clientUser) User() *models.User { return &models.User{ID: 1, UserType: models.UserTypeClient} }

func TestApplicationList_RejectWithReasonReloads(t *testing.T) {
	pid := int64(4)
	apps := &mock.ApplicationRepo{Apps: []models.ProjectApplication{
		{ID: 1, ProjectID: 4, FreelancerID: 2, Status: models.ApplicationStatusApplied},
		{ID: 2, ProjectID: 4, FreelancerID: 3, Status: models.ApplicationStatusMarkedForInterview},
		{ID: 3, ProjectID: 5, FreelancerID: 2, Status: models.ApplicationStatusApplied},
	}}
	center := notify.NewCenter(0)
	list := NewApplicationList(apps, &pid, center, nil)
	defer list.Close()
	ctx := context.Background()

	if err := list.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if v := list.View(); len(v.Items) != 2 || v.Stats.Active != 2 {
		t.Fatalf("unexpected initial view: %+v", v)
	}

	reviewer := workflow.NewReviewer(apps, clientUser{}, center, nil)
	app, _ := list.Get(1)

	// without a reason nothing changes and nothing is sent
	if err := reviewer.Review(ctx, app, workflow.Request{Status: models.ApplicationStatusRejected}, list); !errors.Is(err, workflow.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	lists, _, updates := apps.Calls()
	if lists != 1 || updates != 0 {
		t.Fatalf("blank reason touched the network: lists=%d updates=%d", lists, updates)
	}
	if got, _ := list.Get(1); got.Status != models.ApplicationStatusApplied {
		t.Fatalf("state changed: %+v", got)
	}

	if err := reviewer.Review(ctx, app, workflow.Request{Status: models.ApplicationStatusRejected, Reason: "Not enough experience"}, list); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if lists, _, _ := apps.Calls(); lists != 2 {
		t.Fatalf("expected a full reload, got %d list calls", lists)
	}
	got, _ := list.Get(1)
	if got.Status.Label() != "Rejected" || got.RejectionReason != "Not enough experience" {
		t.Fatalf("unexpected application after review: %+v", got)
	}
	v := list.View()
	if v.Stats.Active != 1 || v.Stats.ByStatus[models.ApplicationStatusRejected] != 1 {
		t.Fatalf("stats not refreshed: %+v", v.Stats)
	}
}

func TestApplicationList_FailureNotifies(t *testing.T) {
	apps := &mock.ApplicationRepo{ListErr: errors.New("502")}
	center := notify.NewCenter(0)
	list := NewApplicationList(apps, nil, center, nil)

	if err := list.Reload(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	v := list.View()
	if !v.Failed || v.Loading || len(v.Items) != 0 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if n := center.List(); len(n) != 1 || n[0].Level != notify.LevelError {
		t.Fatalf("expected error notification: %+v", n)
	}
}

func TestApplicationList_ClosedIgnoresReload(t *testing.T) {
	list := NewApplicationList(&mock.ApplicationRepo{}, nil, nil, nil)
	list.Close()
	if err := list.Reload(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
