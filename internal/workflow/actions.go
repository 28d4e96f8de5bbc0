package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/internal/notify"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
)

// UserSource yields the signed-in user, or nil.
type UserSource interface {
	User() *models.User
}

// Reloader refreshes an application collection after a write.
type Reloader interface {
	Reload(ctx context.Context) error
}

// guard rejects a second write for the same key while one is outstanding.
type guard struct {
	mu       sync.Mutex
	inflight map[int64]bool
}

func (g *guard) enter(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inflight == nil {
		g.inflight = map[int64]bool{}
	}
	if g.inflight[id] {
		return false
	}
	g.inflight[id] = true
	return true
}

func (g *guard) leave(id int64) {
	g.mu.Lock()
	delete(g.inflight, id)
	g.mu.Unlock()
}

// Reviewer applies a client's decision to an application.
type Reviewer struct {
	apps     repository.ApplicationRepo
	users    UserSource
	notifier notify.Notifier
	logger   *slog.Logger
	busy     guard
}

func NewReviewer(apps repository.ApplicationRepo, users UserSource, n notify.Notifier, logger *slog.Logger) *Reviewer {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.Discard{}
	}
	return &Reviewer{apps: apps, users: users, notifier: n, logger: logger}
}

// Review sends the status change and then reloads list in full. Invalid
// requests never reach the API.
func (r *Reviewer) Review(ctx context.Context, app models.ProjectApplication, req Request, list Reloader) error {
	if !r.users.User().IsClient() {
		return ErrForbidden
	}
	if actors[req.Status] != models.UserTypeClient {
		return ErrInvalidTransition
	}
	if err := ValidateTransition(app.Status, req); err != nil {
		return err
	}
	if !r.busy.enter(app.ID) {
		return ErrSubmitting
	}
	defer r.busy.leave(app.ID)

	if err := r.apps.UpdateApplicationStatus(ctx, app.ID, req.update()); err != nil {
		r.logger.Error("workflow: update status", slog.Int64("application_id", app.ID), slog.Any("err", err))
		r.notifier.Notify(notify.LevelError, "Failed to update application status", "")
		return fmt.Errorf("update application %d: %w", app.ID, err)
	}
	r.notifier.Notify(notify.LevelSuccess, "Application "+req.Status.Label(), "")
	reload(ctx, list, r.logger)
	return nil
}

// Submitter sends and withdraws a freelancer's applications.
type Submitter struct {
	apps     repository.ApplicationRepo
	users    UserSource
	notifier notify.Notifier
	logger   *slog.Logger
	busy     guard
	pulling  guard
}

func NewSubmitter(apps repository.ApplicationRepo, users UserSource, n notify.Notifier, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.Discard{}
	}
	return &Submitter{apps: apps, users: users, notifier: n, logger: logger}
}

// Submit validates in against p and applies. A freelancer holds at most one
// application per project that is not withdrawn; a second one is refused
// with ErrAlreadyApplied before anything is sent.
func (s *Submitter) Submit(ctx context.Context, p models.Project, in models.ApplyInput) error {
	if !s.users.User().IsFreelancer() {
		return ErrForbidden
	}
	if err := forms.ValidateApplication(in, p); err != nil {
		return err
	}
	if !s.busy.enter(p.ID) {
		return ErrSubmitting
	}
	defer s.busy.leave(p.ID)

	existing, err := ExistingApplication(ctx, s.apps, p.ID)
	if err != nil {
		s.notifier.Notify(notify.LevelError, "Failed to submit application", "")
		return err
	}
	if existing != nil {
		s.notifier.Notify(notify.LevelInfo, "You have already applied to this project", "")
		return ErrAlreadyApplied
	}

	if err := s.apps.Apply(ctx, p.ID, in); err != nil {
		s.logger.Error("workflow: apply", slog.Int64("project_id", p.ID), slog.Any("err", err))
		s.notifier.Notify(notify.LevelError, "Failed to submit application", "")
		return fmt.Errorf("apply to project %d: %w", p.ID, err)
	}
	s.notifier.Notify(notify.LevelSuccess, "Application submitted successfully", "")
	return nil
}

// Withdraw pulls back one of the caller's applications.
func (s *Submitter) Withdraw(ctx context.Context, app models.ProjectApplication, list Reloader) error {
	u := s.users.User()
	if !u.IsFreelancer() || (app.FreelancerID != 0 && app.FreelancerID != u.ID) {
		return ErrForbidden
	}
	req := Request{Status: models.ApplicationStatusWithdrawn}
	if err := ValidateTransition(app.Status, req); err != nil {
		return err
	}
	if !s.pulling.enter(app.ID) {
		return ErrSubmitting
	}
	defer s.pulling.leave(app.ID)

	if err := s.apps.UpdateApplicationStatus(ctx, app.ID, req.update()); err != nil {
		s.notifier.Notify(notify.LevelError, "Failed to withdraw application", "")
		return fmt.Errorf("withdraw application %d: %w", app.ID, err)
	}
	s.notifier.Notify(notify.LevelSuccess, "Application withdrawn", "")
	reload(ctx, list, s.logger)
	return nil
}

// ExistingApplication returns the caller's live application for a project,
// or nil. Withdrawn applications do not count.
func ExistingApplication(ctx context.Context, apps repository.ApplicationRepo, projectID int64) (*models.ProjectApplication, error) {
	mine, err := apps.ListApplications(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list own applications: %w", err)
	}
	for _, a := range mine {
		if a.ProjectID == projectID && a.Status != models.ApplicationStatusWithdrawn {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func reload(ctx context.Context, list Reloader, logger *slog.Logger) {
	if list == nil {
		return
	}
	if err := list.Reload(ctx); err != nil {
		logger.Warn("workflow: reload applications", slog.Any("err", err))
	}
}
