package shell

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

type fakeAuth struct {
	user       *models.User
	token      string
	loginErr   error
	logoutErr  error
	registered []models.RegisterRequest
	logouts    int
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*models.AuthResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.token = "tok"
	f.user = &models.User{ID: 1, Username: username, Role: models.RoleDoctor, FirstName: "Ann"}
	return &models.AuthResponse{Message: "Login successful", Token: f.token, User: f.user}, nil
}

func (f *fakeAuth) Register(_ context.Context, req models.RegisterRequest) (*models.MutationResponse, error) {
	f.registered = append(f.registered, req)
	return &models.MutationResponse{Message: "User registered successfully", UserID: 9}, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logouts++
	f.user = nil
	f.token = ""
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser() *models.User { return f.user }
func (f *fakeAuth) IsAuthenticated() bool     { return f.token != "" }

type fakeRestorer struct{ err error }

func (r fakeRestorer) Restore(context.Context) error { return r.err }

type captureRecorder struct{ kinds []string }

func (c *captureRecorder) Record(_ context.Context, kind string, _ map[string]interface{}) error {
	c.kinds = append(c.kinds, kind)
	return nil
}

func TestStartsInLoadingState(t *testing.T) {
	s := New(&fakeAuth{}, nil, nil)
	if got := s.Snapshot().State; got != StateLoading {
		t.Fatalf("expected loading, got %s", got)
	}
}

func TestStartWithSavedSession(t *testing.T) {
	auth := &fakeAuth{token: "tok", user: &models.User{ID: 1, Role: models.RoleAdmin, FirstName: "Ann"}}
	s := New(auth, fakeRestorer{}, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateAuthenticated || snap.View != ViewDashboard || snap.User == nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestStartRequiresUserAndCredential(t *testing.T) {
	cases := []*fakeAuth{
		{token: "tok"},
		{user: &models.User{ID: 1}},
		{},
	}
	for i, auth := range cases {
		s := New(auth, fakeRestorer{}, nil)
		_ = s.Start(context.Background())
		snap := s.Snapshot()
		if snap.State != StateUnauthenticated || snap.Form != FormLogin {
			t.Fatalf("case %d: expected login form, got %+v", i, snap)
		}
	}
}

func TestStartRestoreFailureShowsLogin(t *testing.T) {
	auth := &fakeAuth{token: "tok", user: &models.User{ID: 1}}
	s := New(auth, fakeRestorer{err: errors.New("disk unreadable")}, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected restore error to be returned")
	}
	if s.Authenticated() {
		t.Fatal("a failed restore must not sign in")
	}
}

func TestToggleFormAndRegister(t *testing.T) {
	auth := &fakeAuth{}
	s := New(auth, nil, nil)
	_ = s.Start(context.Background())

	form, err := s.ToggleForm()
	if err != nil || form != FormRegister {
		t.Fatalf("expected register form, got %s %v", form, err)
	}
	if form, _ := s.ToggleForm(); form != FormLogin {
		t.Fatalf("expected toggle back to login, got %s", form)
	}
	_, _ = s.ToggleForm()

	if _, err := s.Register(context.Background(), models.RegisterRequest{Username: "new"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateUnauthenticated || snap.Form != FormLogin || snap.Notice == "" {
		t.Fatalf("expected login form with notice after register, got %+v", snap)
	}
}

func TestLoginNavigateLogout(t *testing.T) {
	auth := &fakeAuth{}
	rec := &captureRecorder{}
	s := New(auth, nil, rec)
	ctx := context.Background()
	_ = s.Start(ctx)

	if err := s.Navigate(ViewPatients); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("navigation before login must fail, got %v", err)
	}

	user, err := s.Login(ctx, "drlee", "pw")
	if err != nil || user.Username != "drlee" {
		t.Fatalf("login: %v %v", user, err)
	}
	if _, err := s.ToggleForm(); !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Fatalf("expected toggle to be refused while signed in, got %v", err)
	}

	if err := s.Navigate(ViewPatients); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	screen, _ := s.Screen()
	if screen.View != ViewPatients || screen.Title != "Patients" {
		t.Fatalf("unexpected screen %+v", screen)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateUnauthenticated || snap.Form != FormLogin || snap.User != nil {
		t.Fatalf("unexpected snapshot after logout %+v", snap)
	}
	if auth.logouts != 1 {
		t.Fatal("expected the session to be cleared")
	}

	_, _ = s.Login(ctx, "drlee", "pw")
	if s.Snapshot().View != ViewDashboard {
		t.Fatal("expected the view to reset to the dashboard after logout and login")
	}

	want := []string{models.EventSessionLogin, models.EventSessionLogout, models.EventSessionLogin}
	if !reflect.DeepEqual(rec.kinds, want) {
		t.Fatalf("expected %v, got %v", want, rec.kinds)
	}
}

func TestLogoutFailureStillSignsOut(t *testing.T) {
	auth := &fakeAuth{logoutErr: errors.New("store down")}
	s := New(auth, nil, nil)
	_, _ = s.Login(context.Background(), "x", "y")

	if err := s.Logout(context.Background()); err == nil {
		t.Fatal("expected the clear failure to be reported")
	}
	if s.Authenticated() {
		t.Fatal("expected signed out despite the failure")
	}
}

func TestLoginFailureKeepsLoginForm(t *testing.T) {
	s := New(&fakeAuth{loginErr: errors.New("Invalid credentials")}, nil, nil)
	_ = s.Start(context.Background())
	if _, err := s.Login(context.Background(), "x", "y"); err == nil {
		t.Fatal("expected login error")
	}
	if s.Snapshot().State != StateUnauthenticated {
		t.Fatal("expected to stay signed out")
	}
}

func TestUnknownViewRendersDashboard(t *testing.T) {
	dashboard := Resolve(ViewDashboard, "Ann")
	for _, view := range []string{"settings", "reports", "", "nonsense"} {
		got := Resolve(view, "Ann")
		if got.Requested != view {
			t.Fatalf("expected requested view %q, got %q", view, got.Requested)
		}
		got.Requested = dashboard.Requested
		if !reflect.DeepEqual(got, dashboard) {
			t.Fatalf("view %q: expected dashboard rendering, got %+v", view, got)
		}
	}
	if dashboard.Greeting != "Welcome back, Ann!" {
		t.Fatalf("unexpected greeting %q", dashboard.Greeting)
	}
}
