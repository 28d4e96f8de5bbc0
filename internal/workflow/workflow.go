// Package workflow drives applications through their status lifecycle:
// applied, marked_for_interview, then accepted, rejected or withdrawn.
package workflow

import (
	"errors"
	"slices"
	"strings"

	"github.com/garnizeh/devbuddy/pkg/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
	ErrAlreadyApplied    = errors.New("already applied to this project")
	ErrSubmitting        = errors.New("submission already in progress")
	ErrForbidden         = errors.New("action not allowed for this user")
)

var transitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.ApplicationStatusApplied: {
		models.ApplicationStatusMarkedForInterview,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWithdrawn,
	},
	models.ApplicationStatusMarkedForInterview: {
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusWithdrawn,
	},
}

// actors says who may move an application into a status.
var actors = map[models.ApplicationStatus]models.UserType{
	models.ApplicationStatusMarkedForInterview: models.UserTypeClient,
	models.ApplicationStatusAccepted:           models.UserTypeClient,
	models.ApplicationStatusRejected:           models.UserTypeClient,
	models.ApplicationStatusWithdrawn:          models.UserTypeFreelancer,
}

func CanTransition(from, to models.ApplicationStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Terminal reports a status with no way out.
func Terminal(s models.ApplicationStatus) bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Next lists the statuses actor may move an application to from its
// current status, in lifecycle order.
func Next(from models.ApplicationStatus, actor models.UserType) []models.ApplicationStatus {
	var out []models.ApplicationStatus
	for _, to := range transitions[from] {
		if actors[to] == actor {
			out = append(out, to)
		}
	}
	return out
}

// Request asks for a status change. Reason is required when rejecting.
type Request struct {
	Status models.ApplicationStatus `json:"status"`
	Reason string                   `json:"rejectionReason,omitempty"`
}

// ValidateTransition checks a request against the current status without
// touching the network.
func ValidateTransition(current models.ApplicationStatus, req Request) error {
	if !CanTransition(current, req.Status) {
		return ErrInvalidTransition
	}
	if req.Status == models.ApplicationStatusRejected && strings.TrimSpace(req.Reason) == "" {
		return ErrReasonRequired
	}
	return nil
}

func (r Request) update() models.StatusUpdate {
	u := models.StatusUpdate{Status: r.Status}
	if r.Status == models.ApplicationStatusRejected {
		u.RejectionReason = strings.TrimSpace(r.Reason)
	}
	return u
}
