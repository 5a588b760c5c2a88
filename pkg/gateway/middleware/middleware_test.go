package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eyecare-clinic/console/pkg/common/models"
)

type gate bool

func (g gate) Authenticated() bool { return bool(g) }

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestLoggingSetsRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	Logging(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec = httptest.NewRecorder()
	Logging(ok).ServeHTTP(rec, req)
	if rec.Header().Get(RequestIDHeader) != "abc" {
		t.Fatalf("expected caller request id to be kept, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequireSession(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireSession(gate(false))(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireSession(gate(true))(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type signedIn struct{ user *models.User }

func (s signedIn) User() *models.User { return s.user }

func TestRequireEditor(t *testing.T) {
	cases := []struct {
		name   string
		user   *models.User
		method string
		want   int
	}{
		{"patient reads", &models.User{Role: models.RolePatient}, http.MethodGet, http.StatusOK},
		{"patient writes", &models.User{Role: models.RolePatient}, http.MethodPost, http.StatusForbidden},
		{"patient deletes", &models.User{Role: models.RolePatient}, http.MethodDelete, http.StatusForbidden},
		{"nobody writes", nil, http.MethodPut, http.StatusForbidden},
		{"doctor writes", &models.User{Role: models.RoleDoctor}, http.MethodPut, http.StatusOK},
		{"admin deletes", &models.User{Role: models.RoleAdmin}, http.MethodDelete, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireEditor(signedIn{tc.user})(ok).ServeHTTP(rec, httptest.NewRequest(tc.method, "/", nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	h := RateLimit(1, 2)(ok)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestRecovery(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recovery(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS("http://localhost:5173")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected preflight response %d %v", rec.Code, rec.Header())
	}
}
