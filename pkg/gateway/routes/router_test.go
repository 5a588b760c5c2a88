package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eyecare-clinic/console/pkg/clinicapi"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/dashboard"
	"github.com/eyecare-clinic/console/pkg/kvstore"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
	"github.com/eyecare-clinic/console/pkg/patients"
	"github.com/eyecare-clinic/console/pkg/session"
	"github.com/eyecare-clinic/console/pkg/shell"
	"github.com/gorilla/mux"
)

var testNow = time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)

func fakeClinicAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api := http.NewServeMux()
	reply := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	api.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		role := models.RoleAdmin
		if req.Username == "pat" {
			role = models.RolePatient
		}
		reply(w, http.StatusOK, models.AuthResponse{
			Token: "tok",
			User:  &models.User{ID: 1, Username: req.Username, Role: role, FirstName: "Ann"},
		})
	})
	api.HandleFunc("/api/appointments", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		reply(w, http.StatusOK, []models.Appointment{
			{ID: 1, AppointmentDate: "2024-03-05", Status: models.AppointmentScheduled},
		})
	})
	api.HandleFunc("/api/medical-records", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []models.MedicalRecord{{ID: 1, Diagnosis: "Critical glaucoma"}})
	})
	api.HandleFunc("/api/patients", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, []models.RemotePatient{{ID: 1}, {ID: 2}})
	})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	api := fakeClinicAPI(t)
	kv := kvstore.NewMemory()
	sess := session.New(kv)
	client := clinicapi.New(clinicapi.Config{BaseURL: api.URL + "/api", Timeout: 2 * time.Second, RetryAttempts: 1}, sess, nil)
	sh := shell.New(client, sess, nil)
	if err := sh.Start(context.Background()); err != nil {
		t.Fatalf("start shell: %v", err)
	}
	clock := func() time.Time { return testNow }

	return NewRouter(Deps{
		Shell:    sh,
		Stats:    dashboard.NewStatsController(client, clock),
		Calendar: dashboard.NewCalendar(client, clock),
		Patients: patients.NewStore(kv, patients.WithClock(clock)),
		Metrics:  metrics.New(),
	})
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	if rec := do(t, r, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/ready", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestViewsRequireLogin(t *testing.T) {
	r := newTestRouter(t)
	for _, path := range []string{"/api/v1/views/dashboard", "/api/v1/local/patients", "/api/v1/activity"} {
		if rec := do(t, r, http.MethodGet, path, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
	rec := do(t, r, http.MethodGet, "/api/v1/shell", nil)
	var snap shell.Snapshot
	_ = json.NewDecoder(rec.Body).Decode(&snap)
	if snap.State != shell.StateUnauthenticated || snap.Form != shell.FormLogin {
		t.Fatalf("unexpected shell %+v", snap)
	}
}

func TestLoginFailureRelaysMessage(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Username: "ann", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestSignedInFlow(t *testing.T) {
	r := newTestRouter(t)

	if rec := do(t, r, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Username: "ann", Password: "secret"}); rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}

	rec := do(t, r, http.MethodGet, "/api/v1/views/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", rec.Code, rec.Body.String())
	}
	var dash dashboardView
	if err := json.NewDecoder(rec.Body).Decode(&dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.Stats.TotalPatients != 2 || dash.Stats.CriticalCases != 1 || dash.Stats.PendingAppointments != 1 {
		t.Fatalf("unexpected stats %+v", dash.Stats)
	}
	if dash.Screen.Greeting != "Welcome back, Ann!" || len(dash.Cards) != 5 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/views/sidebar", nil)
	if !strings.Contains(rec.Body.String(), `"reports"`) {
		t.Fatalf("admin sidebar should include reports: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodPut, "/api/v1/shell/view", map[string]string{"view": "settings"})
	var shellResp struct {
		View   string       `json:"view"`
		Screen shell.Screen `json:"screen"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&shellResp)
	if shellResp.View != "settings" || shellResp.Screen.View != shell.ViewDashboard {
		t.Fatalf("unknown view should render the dashboard, got %+v", shellResp)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/local/patients", models.NewPatient{
		Name: "Jane Doe", Age: 50, Email: "J.Smith@x.com", Problem: "Cataract",
		Severity: models.SeverityCritical, Status: models.PatientStatusActive,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created models.Patient
	_ = json.NewDecoder(rec.Body).Decode(&created)

	rec = do(t, r, http.MethodGet, "/api/v1/views/patients?q=smith", nil)
	var list patientsView
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if list.Total != 1 || list.Patients[0].ID != created.ID || list.Patients[0].Severity.Color != dashboard.ColorRed {
		t.Fatalf("unexpected patient list %+v", list)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/views/calendar?month=2024-03&date=2024-03-05", nil)
	var cal dashboard.CalendarView
	_ = json.NewDecoder(rec.Body).Decode(&cal)
	if cal.Month != "2024-03" || len(cal.Selected.Appointments) != 1 {
		t.Fatalf("unexpected calendar %+v", cal.Selected)
	}
	if rec := do(t, r, http.MethodGet, "/api/v1/views/calendar?month=March", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad month, got %d", rec.Code)
	}
	rec = do(t, r, http.MethodPost, "/api/v1/views/calendar/next", nil)
	_ = json.NewDecoder(rec.Body).Decode(&cal)
	if cal.Month != "2024-04" {
		t.Fatalf("expected April, got %s", cal.Month)
	}

	if rec := do(t, r, http.MethodDelete, "/api/v1/local/patients/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/api/v1/local/patients/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/v1/activity", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("activity without a feed: expected 404, got %d", rec.Code)
	}

	if rec := do(t, r, http.MethodPost, "/api/v1/auth/logout", nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: %d", rec.Code)
	}
	if rec := do(t, r, http.MethodGet, "/api/v1/views/dashboard", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestLocalPatientUpdate(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Username: "ann", Password: "secret"})

	rec := do(t, r, http.MethodPost, "/api/v1/local/patients", models.NewPatient{Name: "Bob", Status: models.PatientStatusActive})
	var created models.Patient
	_ = json.NewDecoder(rec.Body).Decode(&created)

	rec = do(t, r, http.MethodPut, "/api/v1/local/patients/"+created.ID, map[string]string{"status": "Treated"})
	var updated models.Patient
	_ = json.NewDecoder(rec.Body).Decode(&updated)
	if rec.Code != http.StatusOK || updated.Status != models.PatientStatusTreated || updated.Name != "Bob" {
		t.Fatalf("unexpected update %d %+v", rec.Code, updated)
	}

	if rec := do(t, r, http.MethodPut, "/api/v1/local/patients/missing", map[string]string{"name": "x"}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/local/patients/stats", nil)
	var stats models.PatientStats
	_ = json.NewDecoder(rec.Body).Decode(&stats)
	if stats.Total != 1 || stats.Treated != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPatientRoleCannotChangeRegister(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Username: "ann", Password: "secret"})
	rec := do(t, r, http.MethodPost, "/api/v1/local/patients", models.NewPatient{Name: "Bob", Status: models.PatientStatusActive})
	var created models.Patient
	_ = json.NewDecoder(rec.Body).Decode(&created)
	do(t, r, http.MethodPost, "/api/v1/auth/logout", nil)

	do(t, r, http.MethodPost, "/api/v1/auth/login", models.LoginRequest{Username: "pat", Password: "secret"})
	if rec := do(t, r, http.MethodGet, "/api/v1/local/patients", nil); rec.Code != http.StatusOK {
		t.Fatalf("patient role should still read the register, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/api/v1/local/patients", models.NewPatient{Name: "Eve"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on create, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPut, "/api/v1/local/patients/"+created.ID, map[string]string{"status": "Treated"}); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on update, got %d", rec.Code)
	}
	if rec := do(t, r, http.MethodDelete, "/api/v1/local/patients/"+created.ID, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 on delete, got %d", rec.Code)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/local/patients/stats", nil)
	var stats models.PatientStats
	_ = json.NewDecoder(rec.Body).Decode(&stats)
	if stats.Total != 1 || stats.Active != 1 {
		t.Fatalf("register should be unchanged, got %+v", stats)
	}
}
