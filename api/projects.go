package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/garnizeh/devbuddy/internal/filter"
	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/internal/listing"
	"github.com/garnizeh/devbuddy/internal/workflow"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/gorilla/mux"
)

// settle is how long a handler waits for the listing fetch it triggered.
const settle = 10 * time.Second

type ProjectsHandler struct {
	app *App
}

func NewProjectsHandler(app *App) *ProjectsHandler {
	return &ProjectsHandler{app: app}
}

type browserResponse struct {
	listing.View
	SearchText  string                `json:"searchText"`
	QuickStatus filter.StatusShortcut `json:"quickStatus"`
	QuickBudget filter.BudgetShortcut `json:"quickBudget"`
	PanelOpen   bool                  `json:"panelOpen"`
	Filter      filter.Filter         `json:"filter"`
}

// waitIdle blocks until the listing settles unless ?wait=false.
func waitIdle(r *http.Request, b *listing.Browser) {
	if r.URL.Query().Get("wait") == "false" {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), settle)
	defer cancel()
	_ = b.Controller().WaitIdle(ctx)
}

func (h *ProjectsHandler) respond(w http.ResponseWriter, r *http.Request, b *listing.Browser) {
	waitIdle(r, b)
	f := b.Filters()
	writeJSON(w, browserResponse{
		View:        b.Controller().View(),
		SearchText:  b.SearchText(),
		QuickStatus: f.QuickStatus(),
		QuickBudget: f.QuickBudget(),
		PanelOpen:   f.PanelOpen(),
		Filter:      f.Filter(),
	}, http.StatusOK)
}

func (h *ProjectsHandler) browser(w http.ResponseWriter) (*listing.Browser, bool) {
	u, ok := h.app.requireUser(w)
	if !ok {
		return nil, false
	}
	return h.app.Browser(u), true
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	b, ok := h.browser(w)
	if !ok {
		return
	}
	h.respond(w, r, b)
}

type searchRequest struct {
	Text string `json:"text"`
	// Settle skips the quiet period, e.g. on enter.
	Settle bool `json:"settle"`
}

func (h *ProjectsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Type(req.Text)
	if req.Settle {
		b.Controller().SetSearch(req.Text)
	}
	h.respond(w, r, b)
}

type quickRequest struct {
	Status *filter.StatusShortcut `json:"status"`
	Budget *filter.BudgetShortcut `json:"budget"`
}

func (h *ProjectsHandler) Quick(w http.ResponseWriter, r *http.Request) {
	var req quickRequest
	if !decode(w, r, &req) {
		return
	}
	b, ok := h.browser(w)
	if !ok {
		return
	}
	// both shortcuts are checked before either is committed
	errs := forms.Errors{}
	if req.Status != nil && !req.Status.Valid() {
		errs["status"] = filter.ErrUnknownShortcut.Error()
	}
	if req.Budget != nil && !req.Budget.Valid() {
		errs["budget"] = filter.ErrUnknownShortcut.Error()
	}
	if len(errs) > 0 {
		writeError(w, errs)
		return
	}
	if req.Status != nil {
		_ = b.Filters().SetQuickStatus(*req.Status)
	}
	if req.Budget != nil {
		_ = b.Filters().SetQuickBudget(*req.Budget)
	}
	h.respond(w, r, b)
}

func (h *ProjectsHandler) OpenPanel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.browser(w)
	if !ok {
		return
	}
	writeJSON(w, b.Filters().OpenPanel(), http.StatusOK)
}

func (h *ProjectsHandler) ApplyPanel(w http.ResponseWriter, r *http.Request) {
	var req filter.PanelFields
	if !decode(w, r, &req) {
		return
	}
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Filters().ApplyPanel(req)
	h.respond(w, r, b)
}

func (h *ProjectsHandler) ClosePanel(w http.ResponseWriter, r *http.Request) {
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Filters().ClosePanel()
	h.respond(w, r, b)
}

func (h *ProjectsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Reset()
	h.respond(w, r, b)
}

func (h *ProjectsHandler) RemoveFilter(w http.ResponseWriter, r *http.Request) {
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Filters().Remove(mux.Vars(r)["key"])
	h.respond(w, r, b)
}

type pageRequest struct {
	Page int `json:"page"`
}

func (h *ProjectsHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if !decode(w, r, &req) {
		return
	}
	b, ok := h.browser(w)
	if !ok {
		return
	}
	b.Controller().SetPage(req.Page)
	h.respond(w, r, b)
}

type projectDetails struct {
	models.Project
	DaysRemaining int                        `json:"daysRemaining"`
	Application   *models.ProjectApplication `json:"application,omitempty"`
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.app.requireUser(w)
	if !ok {
		return
	}
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	out := projectDetails{Project: *p, DaysRemaining: p.DaysRemaining(time.Now())}
	if u.IsFreelancer() {
		existing, err := workflow.ExistingApplication(r.Context(), h.app.Applications, p.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		out.Application = existing
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectInput
	if !decode(w, r, &req) {
		return
	}
	if err := forms.ValidateProject(req, time.Now()); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.app.Projects.CreateProject(r.Context(), req)
	if err != nil {
		h.app.Notices.Error("Failed to create project", "")
		writeError(w, err)
		return
	}
	h.app.Notices.Success("Project created successfully", "")
	if u := h.app.user(); u != nil {
		// the owner's listing now has one more project
		h.app.Browser(u).Controller().Reload()
	}
	writeJSON(w, p, http.StatusCreated)
}

func (h *ProjectsHandler) ApplyIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, ok := h.browser(w)
	if !ok {
		return
	}
	loc, err := b.Controller().RequestApply(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"location": loc}, http.StatusOK)
}

func (h *ProjectsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.ApplyInput
	if !decode(w, r, &req) {
		return
	}
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	if err := h.app.submitter.Submit(r.Context(), *p, req); err != nil {
		writeError(w, err)
		return
	}
	if u := h.app.user(); u != nil {
		h.app.Browser(u).Controller().Reload()
	}
	writeJSON(w, map[string]string{"message": "Application submitted successfully"}, http.StatusCreated)
}

func (h *ProjectsHandler) Applications(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	if !h.app.owns(p) {
		writeError(w, workflow.ErrForbidden)
		return
	}
	list := listing.NewApplicationList(h.app.Applications, &p.ID, h.app.Notices, logger)
	defer list.Close()
	if err := list.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct {
		Project models.Project           `json:"project"`
		View    listing.ApplicationsView `json:"applications"`
	}{*p, list.View()}, http.StatusOK)
}

// project loads the {id} project; a missing one answers 404.
func (h *ProjectsHandler) project(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	p, err := h.app.Projects.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if p == nil {
		writeError(w, marketplace.ErrNotFound)
		return nil, false
	}
	return p, true
}

// owns reports whether p belongs to the signed-in client.
func (a *App) owns(p *models.Project) bool {
	u := a.user()
	return u.IsClient() && p.ClientID == u.ID
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, errorBody{Error: "invalid id"}, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
