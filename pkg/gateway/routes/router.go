package routes

import (
	"context"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/dashboard"
	"github.com/eyecare-clinic/console/pkg/gateway/middleware"
	"github.com/eyecare-clinic/console/pkg/observability/metrics"
	"github.com/eyecare-clinic/console/pkg/patients"
	"github.com/eyecare-clinic/console/pkg/shell"
	"github.com/gorilla/mux"
)

// Deps are the collaborators the console's HTTP surface is built from.
type Deps struct {
	Shell    *shell.Shell
	Stats    *dashboard.StatsController
	Calendar *dashboard.Calendar
	Patients *patients.Store
	// Feed may be nil when no activity store is configured.
	Feed    activity.Feed
	Metrics *metrics.Collector
	// Ready reports whether backing stores are reachable.
	Ready func(ctx context.Context) error

	CORSOrigin     string
	RateLimitRPS   int
	RateLimitBurst int
	MaxRequestBody int64
}

func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.Metrics(d.Metrics))
	router.Use(middleware.CORS(d.CORSOrigin))
	if d.RateLimitRPS > 0 {
		router.Use(middleware.RateLimit(d.RateLimitRPS, d.RateLimitBurst))
	}
	router.Use(middleware.BodyLimit(d.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				logger.Log.WithError(err).Warn("readiness check failed")
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)

	router.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	NewAuthHandler(d.Shell).Register(api.PathPrefix("/auth").Subrouter())
	NewShellHandler(d.Shell).Register(api.PathPrefix("/shell").Subrouter())

	views := api.PathPrefix("/views").Subrouter()
	views.Use(middleware.RequireSession(d.Shell))
	NewViewsHandler(d.Shell, d.Stats, d.Calendar, d.Patients).Register(views)

	local := api.PathPrefix("/local/patients").Subrouter()
	local.Use(middleware.RequireSession(d.Shell))
	local.Use(middleware.RequireEditor(d.Shell))
	NewLocalPatientsHandler(d.Patients).Register(local)

	feed := api.PathPrefix("/activity").Subrouter()
	feed.Use(middleware.RequireSession(d.Shell))
	NewActivityHandler(d.Feed).Register(feed)

	return router
}
