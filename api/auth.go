package api

import (
	"errors"
	"net/http"

	"github.com/garnizeh/devbuddy/internal/forms"
	"github.com/garnizeh/devbuddy/internal/session"
	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
)

type AuthHandler struct {
	app *App
}

func NewAuthHandler(app *App) *AuthHandler {
	return &AuthHandler{app: app}
}

type registerRequest struct {
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Password         string          `json:"password"`
	ConfirmPassword  string          `json:"confirmPassword"`
	UserType         models.UserType `json:"userType"`
	Title            string          `json:"title"`
	Bio              string          `json:"bio"`
	HourlyRate       float64         `json:"hourlyRate"`
	LinkedinURL      string          `json:"linkedinUrl"`
	GithubURL        string          `json:"githubUrl"`
	ExperienceYears  int             `json:"experienceYears"`
	ExperienceMonths int             `json:"experienceMonths"`
}

func (req registerRequest) registration() (forms.Registration, bool) {
	acct := forms.Account{Name: req.Name, Email: req.Email, Password: req.Password, ConfirmPassword: req.ConfirmPassword}
	switch req.UserType {
	case models.UserTypeClient:
		return forms.ClientRegistration(acct), true
	case models.UserTypeFreelancer:
		return forms.FreelancerRegistration(acct, forms.FreelancerProfile{
			Title:            req.Title,
			Bio:              req.Bio,
			HourlyRate:       req.HourlyRate,
			LinkedinURL:      req.LinkedinURL,
			GithubURL:        req.GithubURL,
			ExperienceYears:  req.ExperienceYears,
			ExperienceMonths: req.ExperienceMonths,
		}), true
	}
	return forms.Registration{}, false
}

type authResponse struct {
	User *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginInput
	if !decode(w, r, &req) {
		return
	}
	if err := forms.ValidateLogin(req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.app.Session.Login(r.Context(), req)
	if err != nil {
		var apiErr *marketplace.APIError
		if errors.Is(err, marketplace.ErrUnauthorized) || (errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest) {
			writeJSON(w, errorBody{Error: "Invalid email or password"}, http.StatusUnauthorized)
			return
		}
		writeError(w, err)
		return
	}
	h.app.Notices.Success("Welcome back, "+u.Name, "")
	writeJSON(w, authResponse{User: u}, http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	reg, ok := req.registration()
	if !ok {
		writeError(w, forms.Errors{"userType": "Select an account type"})
		return
	}
	if err := reg.Validate(); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.app.Session.Register(r.Context(), reg.Input())
	if err != nil {
		writeError(w, err)
		return
	}
	h.app.Notices.Success("Account created", "")
	writeJSON(w, authResponse{User: u}, http.StatusCreated)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "signed out"}, http.StatusOK)
}

// Session reports the session phase and user; it is never guarded.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	st := h.app.Session.State()
	writeJSON(w, struct {
		Phase          string       `json:"phase"`
		User           *models.User `json:"user"`
		Authenticating bool         `json:"authenticating"`
	}{st.Phase.String(), st.User, st.Authenticating}, http.StatusOK)
}

func (a *App) requireUser(w http.ResponseWriter) (*models.User, bool) {
	u := a.user()
	if u == nil {
		writeError(w, session.ErrNotAuthenticated)
		return nil, false
	}
	return u, true
}
