package api

import (
	"github.com/garnizeh/devbuddy/internal/policy"
	"github.com/gorilla/mux"
)

func SetupRoutes(version, buildTime string, app *App) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{app: app}
	authHandler := NewAuthHandler(app)
	projectsHandler := NewProjectsHandler(app)
	applicationsHandler := NewApplicationsHandler(app)
	profileHandler := NewProfileHandler(app)
	noticesHandler := NewNoticesHandler(app)
	guard := app.guard

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/nav", systemHandler.NavHandler).Methods("GET")
	r.HandleFunc("/session", authHandler.Session).Methods("GET")
	r.HandleFunc("/notifications", noticesHandler.List).Methods("GET")
	r.HandleFunc("/notifications", noticesHandler.Clear).Methods("DELETE")
	r.HandleFunc("/notifications/{id}", noticesHandler.Dismiss).Methods("DELETE")

	// Public-only
	r.Handle("/auth/login", guard(policy.PublicOnly, authHandler.Login)).Methods("POST")
	r.Handle("/auth/register", guard(policy.PublicOnly, authHandler.Register)).Methods("POST")

	// Signed in
	r.Handle("/auth/logout", guard(policy.Authenticated, authHandler.Logout)).Methods("POST")
	r.Handle("/dashboard", guard(policy.Authenticated, applicationsHandler.Dashboard)).Methods("GET")
	r.Handle("/profile", guard(policy.Authenticated, profileHandler.Get)).Methods("GET")
	r.Handle("/profile", guard(policy.Authenticated, profileHandler.Update)).Methods("PATCH")
	r.Handle("/profile/skills", guard(policy.Authenticated, profileHandler.Skills)).Methods("GET")
	r.Handle("/profile/skills", guard(policy.Authenticated, profileHandler.AddSkill)).Methods("POST")
	r.Handle("/profile/skills/{id}", guard(policy.Authenticated, profileHandler.RemoveSkill)).Methods("DELETE")
	r.Handle("/skills", guard(policy.Authenticated, profileHandler.Catalog)).Methods("GET")

	// Project listing
	r.Handle("/projects", guard(policy.Authenticated, projectsHandler.List)).Methods("GET")
	r.Handle("/projects", guard(policy.ClientOnly, projectsHandler.Create)).Methods("POST")
	r.Handle("/projects/search", guard(policy.Authenticated, projectsHandler.Search)).Methods("POST")
	r.Handle("/projects/page", guard(policy.Authenticated, projectsHandler.Page)).Methods("POST")
	r.Handle("/projects/filters/quick", guard(policy.Authenticated, projectsHandler.Quick)).Methods("POST")
	r.Handle("/projects/filters/panel", guard(policy.Authenticated, projectsHandler.OpenPanel)).Methods("GET")
	r.Handle("/projects/filters/panel", guard(policy.Authenticated, projectsHandler.ApplyPanel)).Methods("POST")
	r.Handle("/projects/filters/panel", guard(policy.Authenticated, projectsHandler.ClosePanel)).Methods("DELETE")
	r.Handle("/projects/filters/reset", guard(policy.Authenticated, projectsHandler.Reset)).Methods("POST")
	r.Handle("/projects/filters/{key}", guard(policy.Authenticated, projectsHandler.RemoveFilter)).Methods("DELETE")
	r.Handle("/projects/{id:[0-9]+}", guard(policy.Authenticated, projectsHandler.Get)).Methods("GET")
	r.Handle("/projects/{id:[0-9]+}/applications", guard(policy.ClientOnly, projectsHandler.Applications)).Methods("GET")
	r.Handle("/projects/{id:[0-9]+}/apply-intent", guard(policy.FreelancerOnly, projectsHandler.ApplyIntent)).Methods("POST")
	r.Handle("/projects/{id:[0-9]+}/apply", guard(policy.FreelancerOnly, projectsHandler.Apply)).Methods("POST")

	// Applications
	r.Handle("/applications", guard(policy.FreelancerOnly, applicationsHandler.Mine)).Methods("GET")
	r.Handle("/applications/{id:[0-9]+}/status", guard(policy.ClientOnly, applicationsHandler.UpdateStatus)).Methods("PUT")
	r.Handle("/applications/{id:[0-9]+}/withdraw", guard(policy.FreelancerOnly, applicationsHandler.Withdraw)).Methods("POST")

	return r
}
