package api

import (
	"net/http"

	"github.com/garnizeh/devbuddy/internal/catalog"
	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/gorilla/mux"
)

type ProfileHandler struct {
	app *App
}

func NewProfileHandler(app *App) *ProfileHandler {
	return &ProfileHandler{app: app}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.app.requireUser(w)
	if !ok {
		return
	}
	writeJSON(w, authResponse{User: u}, http.StatusOK)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := h.app.requireUser(w)
	if !ok {
		return
	}
	var req models.UpdateProfileInput
	if !decode(w, r, &req) {
		return
	}
	if err := forms.ValidateProfile(req, u.UserType); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.app.Profiles.UpdateProfile(r.Context(), req)
	if err != nil {
		h.app.Notices.Error("Failed to update profile", "")
		writeError(w, err)
		return
	}
	h.app.Session.SetUser(updated)
	h.app.Notices.Success("Profile updated", "")
	writeJSON(w, authResponse{User: updated}, http.StatusOK)
}

type skillsResponse struct {
	Skills    []models.UserSkill `json:"skills"`
	Available []models.Skill     `json:"available"`
}

// Skills lists the user's skills and the catalog entries not yet claimed.
func (h *ProfileHandler) Skills(w http.ResponseWriter, r *http.Request) {
	mine, err := h.app.Skills.ListUserSkills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	all, err := h.app.Catalog.Skills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if mine == nil {
		mine = []models.UserSkill{}
	}
	writeJSON(w, skillsResponse{Skills: mine, Available: catalog.Available(all, mine)}, http.StatusOK)
}

func (h *ProfileHandler) AddSkill(w http.ResponseWriter, r *http.Request) {
	var req models.UserSkillInput
	if !decode(w, r, &req) {
		return
	}
	if err := forms.ValidateUserSkill(req); err != nil {
		writeError(w, err)
		return
	}
	us, err := h.app.Skills.AddUserSkill(r.Context(), req)
	if err != nil {
		h.app.Notices.Error("Failed to add skill", "")
		writeError(w, err)
		return
	}
	if us.Skill == nil {
		if s, ok := h.app.Catalog.Lookup(us.SkillID); ok {
			us.Skill = &s
		}
	}
	h.app.Notices.Success("Skill added", "")
	writeJSON(w, us, http.StatusCreated)
}

func (h *ProfileHandler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.app.Skills.RemoveUserSkill(r.Context(), id); err != nil {
		h.app.Notices.Error("Failed to remove skill", "")
		writeError(w, err)
		return
	}
	h.app.Notices.Success("Skill removed", "")
	w.WriteHeader(http.StatusNoContent)
}

// Catalog lists every skill known to the marketplace.
func (h *ProfileHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	all, err := h.app.Catalog.Skills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, all, http.StatusOK)
}

type NoticesHandler struct {
	app *App
}

func NewNoticesHandler(app *App) *NoticesHandler {
	return &NoticesHandler{app: app}
}

func (h *NoticesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.app.Notices.List(), http.StatusOK)
}

func (h *NoticesHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.app.Notices.Dismiss(mux.Vars(r)["id"]) {
		writeJSON(w, errorBody{Error: "not found"}, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoticesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.app.Notices.Clear()
	w.WriteHeader(http.StatusNoContent)
}
