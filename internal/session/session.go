// Package session owns the signed-in identity of the process. There is a
// single writer path (Bootstrap, Login, Register, Logout, Invalidate) and any
// number of readers, which either take a State snapshot or Subscribe.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garnizeh/devbuddy/pkg/marketplace"
	"github.com/garnizeh/devbuddy/pkg/models"
	"github.com/garnizeh/devbuddy/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrBusy is returned when a login or registration is already in flight.
	ErrBusy = errors.New("authentication already in progress")
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseResolving
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseResolving:
		return "resolving"
	case PhaseResolved:
		return "resolved"
	}
	return "uninitialized"
}

// State is an immutable snapshot of the session.
type State struct {
	Phase          Phase
	User           *models.User
	Authenticating bool
}

// Resolved reports whether the identity question has been answered.
func (s State) Resolved() bool { return s.Phase == PhaseResolved }

// Authenticated reports a resolved session with a user.
func (s State) Authenticated() bool { return s.Phase == PhaseResolved && s.User != nil }

type Options struct {
	// Leeway is added to a stored token's expiry before it is treated as expired.
	Leeway time.Duration
	Logger *slog.Logger
}

type Session struct {
	auth   repository.AuthRepo
	tokens repository.TokenStore
	leeway time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	subs   map[int]func(State)
	nextID int

	pubMu sync.Mutex
}

func New(auth repository.AuthRepo, tokens repository.TokenStore, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		auth:   auth,
		tokens: tokens,
		leeway: opts.Leeway,
		now:    time.Now,
		logger: logger,
		subs:   map[int]func(State){},
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in user or nil.
func (s *Session) User() *models.User {
	return s.State().User
}

// Subscribe registers fn for every state change. Callbacks run outside the
// session lock but must not write to the session themselves.
func (s *Session) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Bootstrap resolves the stored credential into a user. It never fails the
// session: every outcome ends in PhaseResolved. The returned error is only
// informative.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = State{Phase: PhaseResolving}
	s.mu.Unlock()
	s.publish()

	token, err := s.tokens.LoadToken(ctx)
	if err != nil {
		s.resolve(gen, nil)
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		s.resolve(gen, nil)
		return nil
	}
	if s.expired(token) {
		s.logger.Info("session: stored token expired")
		s.clearToken(ctx)
		s.resolve(gen, nil)
		return nil
	}

	u, err := s.auth.Me(ctx)
	switch {
	case errors.Is(err, marketplace.ErrUnauthorized):
		s.clearToken(ctx)
		s.resolve(gen, nil)
		return nil
	case err != nil:
		// keep the token; the API may just be unreachable right now
		s.logger.Warn("session: bootstrap failed", slog.Any("err", err))
		s.resolve(gen, nil)
		return fmt.Errorf("resolve session: %w", err)
	}
	s.resolve(gen, u)
	return nil
}

func (s *Session) Login(ctx context.Context, in models.LoginInput) (*models.User, error) {
	return s.authenticate(ctx, func(ctx context.Context) (models.AuthResult, error) {
		return s.auth.Login(ctx, in)
	})
}

func (s *Session) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	return s.authenticate(ctx, func(ctx context.Context) (models.AuthResult, error) {
		return s.auth.Register(ctx, in)
	})
}

func (s *Session) authenticate(ctx context.Context, call func(context.Context) (models.AuthResult, error)) (*models.User, error) {
	s.mu.Lock()
	if s.state.Authenticating {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.state.Authenticating = true
	s.mu.Unlock()
	s.publish()

	res, err := call(ctx)
	if err == nil && res.Token != "" {
		err = s.tokens.SaveToken(ctx, res.Token)
	}

	s.mu.Lock()
	s.state.Authenticating = false
	if err == nil {
		u := res.User
		s.gen++
		s.state.Phase = PhaseResolved
		s.state.User = &u
	}
	user := s.state.User
	s.mu.Unlock()
	s.publish()

	if err != nil {
		return nil, err
	}
	s.logger.Info("session: signed in", slog.Int64("user_id", user.ID), slog.String("user_type", string(user.UserType)))
	return user, nil
}

// Logout forgets the credential and resolves to no user.
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.ClearToken(ctx)
	s.mu.Lock()
	s.gen++
	s.state = State{Phase: PhaseResolved}
	s.mu.Unlock()
	s.publish()
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Invalidate reacts to a 401 from the API: the credential is dropped and the
// session resolves to no user.
func (s *Session) Invalidate() {
	s.mu.Lock()
	wasSignedIn := s.state.User != nil
	s.mu.Unlock()

	s.clearToken(context.Background())
	s.mu.Lock()
	s.gen++
	s.state = State{Phase: PhaseResolved, Authenticating: s.state.Authenticating}
	s.mu.Unlock()
	if wasSignedIn {
		s.logger.Info("session: invalidated by api")
	}
	s.publish()
}

// SetUser replaces the signed-in user, e.g. after a profile update. It is a
// no-op when nobody is signed in.
func (s *Session) SetUser(u *models.User) {
	s.mu.Lock()
	if s.state.User == nil || u == nil {
		s.mu.Unlock()
		return
	}
	cp := *u
	s.state.User = &cp
	s.mu.Unlock()
	s.publish()
}

func (s *Session) resolve(gen uint64, u *models.User) {
	s.mu.Lock()
	if gen != s.gen {
		// a login or logout happened meanwhile and owns the state now
		s.mu.Unlock()
		return
	}
	s.state.Phase = PhaseResolved
	s.state.User = u
	s.mu.Unlock()
	s.publish()
}

func (s *Session) publish() {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	st := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}

func (s *Session) clearToken(ctx context.Context) {
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.logger.Error("session: clear token", slog.Any("err", err))
	}
}

// expired reports whether token is a JWT whose exp claim has passed. Opaque
// tokens are left for the API to judge.
func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return s.now().After(exp.Add(s.leeway))
}
