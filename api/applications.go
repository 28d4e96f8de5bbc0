package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
)

type ApplicationsHandler struct {
	app *App
}

func NewApplicationsHandler(app *App) *ApplicationsHandler {
	return &ApplicationsHandler{app: app}
}

// Mine lists the freelancer's own applications with their stats.
func (h *ApplicationsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list := listing.NewApplicationList(h.app.Applications, nil, h.app.Notices, logger)
	defer list.Close()
	if err := list.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, list.View(), http.StatusOK)
}

type statusRequest struct {
	ProjectID int64 `json:"projectId"`
	workflow.Request
}

// UpdateStatus moves an application of one of the client's projects along
// the review workflow and answers with the refreshed collection.
func (h *ApplicationsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProjectID <= 0 {
		writeJSON(w, errorBody{Error: "projectId is required"}, http.StatusBadRequest)
		return
	}

	p, err := h.app.Projects.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		writeError(w, err)
		return
	}
	if p == nil {
		writeError(w, marketplace.ErrNotFound)
		return
	}
	if !h.app.owns(p) {
		writeError(w, workflow.ErrForbidden)
		return
	}

	list := listing.NewApplicationList(h.app.Applications, &req.ProjectID, h.app.Notices, logger)
	defer list.Close()
	if err := list.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	a, found := list.Get(id)
	if !found {
		writeError(w, marketplace.ErrNotFound)
		return
	}
	if err := h.app.reviewer.Review(r.Context(), a, req.Request, list); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, list.View(), http.StatusOK)
}

func (h *ApplicationsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list := listing.NewApplicationList(h.app.Applications, nil, h.app.Notices, logger)
	defer list.Close()
	if err := list.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	a, found := list.Get(id)
	if !found {
		writeError(w, marketplace.ErrNotFound)
		return
	}
	if err := h.app.submitter.Withdraw(r.Context(), a, list); err != nil {
		writeError(w, err)
		return
	}
	if u := h.app.user(); u != nil {
		// the withdrawn project becomes applicable again
		h.app.Browser(u).Controller().Reload()
	}
	writeJSON(w, list.View(), http.StatusOK)
}

type dashboard struct {
	User         *models.User              `json:"user"`
	Projects     *listing.Stats            `json:"projects,omitempty"`
	Applications *listing.ApplicationStats `json:"applications,omitempty"`
	Recent       []recentApplication       `json:"recentApplications,omitempty"`
	Skills       []models.UserSkill        `json:"skills,omitempty"`
}

// recentApplication is one entry of the freelancer's timeline.
type recentApplication struct {
	ProjectID    int64                    `json:"projectId"`
	ProjectTitle string                   `json:"projectTitle"`
	Status       models.ApplicationStatus `json:"status"`
	AppliedDate  time.Time                `json:"appliedDate"`
	ProposedRate float64                  `json:"proposedRate"`
}

// Dashboard summarises the owned projects of a client, or the applications
// and skills of a freelancer.
func (h *ApplicationsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := h.app.requireUser(w)
	if !ok {
		return
	}
	out := dashboard{User: u}
	if u.IsClient() {
		b := h.app.Browser(u)
		waitIdle(r, b)
		stats := b.Controller().View().Stats
		out.Projects = &stats
		writeJSON(w, out, http.StatusOK)
		return
	}

	list := listing.NewApplicationList(h.app.Applications, nil, h.app.Notices, logger)
	defer list.Close()
	if err := list.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	v := list.View()
	out.Applications = &v.Stats
	out.Recent = []recentApplication{}
	for _, a := range listing.Recent(v.Items, listing.RecentLimit) {
		out.Recent = append(out.Recent, recentApplication{
			ProjectID:    a.ProjectID,
			ProjectTitle: h.projectTitle(r, a),
			Status:       a.Status,
			AppliedDate:  a.CreatedAt,
			ProposedRate: a.ProposedRate,
		})
	}

	skills, err := h.app.Skills.ListUserSkills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out.Skills = skills
	if out.Skills == nil {
		out.Skills = []models.UserSkill{}
	}
	writeJSON(w, out, http.StatusOK)
}

// projectTitle prefers the project embedded in a; a lookup failure leaves
// the title empty rather than failing the dashboard.
func (h *ApplicationsHandler) projectTitle(r *http.Request, a models.ProjectApplication) string {
	if a.Project != nil {
		return a.Project.Title
	}
	p, err := h.app.Projects.GetProject(r.Context(), a.ProjectID)
	if err != nil {
		logger.Warn("dashboard: project lookup failed", slog.Int64("project_id", a.ProjectID), slog.Any("err", err))
		return ""
	}
	if p == nil {
		return ""
	}
	return p.Title
}
