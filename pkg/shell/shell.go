// Package shell is the console's top-level state: whether an operator is
// signed in, which sign-in form is showing, and which screen is active.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
)

type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

type Form string

const (
	FormLogin    Form = "login"
	FormRegister Form = "register"
)

// Screens.
const (
	ViewDashboard      = "dashboard"
	ViewAppointments   = "appointments"
	ViewPatients       = "patients"
	ViewMedicalRecords = "medical-records"
	ViewDoctors        = "doctors"
	ViewProfile        = "profile"
)

const SessionExpiredNotice = "Your session has expired, please sign in again"

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	ErrNoCredential         = errors.New("login response carried no credential")
)

// Authenticator is the clinic API's session surface.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.MutationResponse, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.User
	IsAuthenticated() bool
}

// Restorer reloads a persisted session.
type Restorer interface {
	Restore(ctx context.Context) error
}

type Snapshot struct {
	State  State        `json:"state"`
	Form   Form         `json:"form,omitempty"`
	View   string       `json:"view,omitempty"`
	User   *models.User `json:"user,omitempty"`
	Notice string       `json:"notice,omitempty"`
}

type Shell struct {
	auth     Authenticator
	restorer Restorer
	recorder activity.Recorder

	mu     sync.RWMutex
	state  State
	form   Form
	view   string
	user   *models.User
	notice string
}

func New(auth Authenticator, restorer Restorer, recorder activity.Recorder) *Shell {
	return &Shell{
		auth:     auth,
		restorer: restorer,
		recorder: recorder,
		state:    StateLoading,
		form:     FormLogin,
		view:     ViewDashboard,
	}
}

// Start resolves the loading state. A saved profile with a valid credential
// signs the operator straight in; anything else shows the login form.
func (s *Shell) Start(ctx context.Context) error {
	var restoreErr error
	if s.restorer != nil {
		if err := s.restorer.Restore(ctx); err != nil {
			restoreErr = fmt.Errorf("restoring session: %w", err)
		}
	}

	user := s.auth.CurrentUser()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = ViewDashboard
	s.form = FormLogin
	if restoreErr == nil && user != nil && s.auth.IsAuthenticated() {
		s.state = StateAuthenticated
		s.user = user
	} else {
		s.state = StateUnauthenticated
		s.user = nil
	}
	return restoreErr
}

// ToggleForm switches between the login and registration forms.
func (s *Shell) ToggleForm() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnauthenticated {
		return s.form, ErrAlreadyAuthenticated
	}
	if s.form == FormLogin {
		s.form = FormRegister
	} else {
		s.form = FormLogin
	}
	s.notice = ""
	return s.form, nil
}

func (s *Shell) Login(ctx context.Context, username, password string) (*models.User, error) {
	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrNoCredential
	}
	user := resp.User
	if user == nil {
		user = s.auth.CurrentUser()
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	s.view = ViewDashboard
	s.form = FormLogin
	s.notice = ""
	s.mu.Unlock()

	s.record(ctx, models.EventSessionLogin, user)
	return user, nil
}

// Register creates an account and returns to the login form on success.
func (s *Shell) Register(ctx context.Context, req models.RegisterRequest) (*models.MutationResponse, error) {
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.state == StateUnauthenticated {
		s.form = FormLogin
		s.notice = "Registration successful, please sign in"
	}
	s.mu.Unlock()
	return resp, nil
}

// Logout always ends the console session, even when clearing the persisted
// copy fails; that failure is returned.
func (s *Shell) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)

	s.mu.Lock()
	user := s.user
	s.state = StateUnauthenticated
	s.form = FormLogin
	s.view = ViewDashboard
	s.user = nil
	s.notice = ""
	s.mu.Unlock()

	if user != nil {
		s.record(ctx, models.EventSessionLogout, user)
	}
	return err
}

// Navigate selects the active screen. Any value is accepted; Screen decides
// how to render it.
func (s *Shell) Navigate(view string) error {
	s.expireStale()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		return ErrNotAuthenticated
	}
	s.view = view
	return nil
}

func (s *Shell) Snapshot() Snapshot {
	s.expireStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state, Notice: s.notice}
	switch s.state {
	case StateAuthenticated:
		snap.View = s.view
		if s.user != nil {
			u := *s.user
			snap.User = &u
		}
	case StateUnauthenticated:
		snap.Form = s.form
	}
	return snap
}

// User returns the signed-in operator, or nil.
func (s *Shell) User() *models.User {
	s.expireStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated || s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Shell) Authenticated() bool {
	s.expireStale()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated
}

// expireStale signs the operator out once the stored credential has expired
// and clears the persisted session.
func (s *Shell) expireStale() {
	s.mu.RLock()
	signedIn := s.state == StateAuthenticated
	s.mu.RUnlock()
	if !signedIn || s.auth.IsAuthenticated() {
		return
	}

	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return
	}
	user := s.user
	s.state = StateUnauthenticated
	s.form = FormLogin
	s.view = ViewDashboard
	s.user = nil
	s.notice = SessionExpiredNotice
	s.mu.Unlock()

	ctx := context.Background()
	if err := s.auth.Logout(ctx); err != nil {
		logger.Log.WithError(err).Error("Failed to clear expired session")
	}
	logger.Log.Info("Session expired, signed out")
	s.record(ctx, models.EventSessionLogout, user)
}

func (s *Shell) record(ctx context.Context, kind string, user *models.User) {
	if s.recorder == nil {
		return
	}
	data := map[string]interface{}{}
	if user != nil {
		data["userId"] = user.ID
		data["username"] = user.Username
		data["role"] = string(user.Role)
	}
	if err := s.recorder.Record(ctx, kind, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", kind).Warn("Failed to record session activity")
	}
}
