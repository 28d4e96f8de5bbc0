package api

import (
	"fmt"
	"net/http"

	"github.com/garnizeh/devbuddy/internal/policy"
)

type SystemHandler struct {
	app *App
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok","service":"devbuddy"}`)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","buildTime":"%s"}`, version, buildTime)
	}
}

type navResponse struct {
	Path     string `json:"path"`
	Route    string `json:"route,omitempty"`
	Outcome  string `json:"outcome"`
	Location string `json:"location,omitempty"`
}

// NavHandler answers what the guard decides for ?path= right now.
func (h *SystemHandler) NavHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = policy.LandingPath
	}
	route, _, _ := policy.Match(path)
	d := policy.Evaluate(h.app.Session.State(), path)
	writeJSON(w, navResponse{Path: path, Route: route.Name, Outcome: d.Outcome.String(), Location: d.Location}, http.StatusOK)
}
