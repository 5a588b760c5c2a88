package routes

import (
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/dashboard"
	"github.com/eyecare-clinic/console/pkg/patients"
	"github.com/eyecare-clinic/console/pkg/shell"
	"github.com/gorilla/mux"
)

// ViewsHandler serves the display-ready view models of the signed-in screens.
type ViewsHandler struct {
	shell    *shell.Shell
	stats    *dashboard.StatsController
	calendar *dashboard.Calendar
	store    *patients.Store
}

func NewViewsHandler(sh *shell.Shell, stats *dashboard.StatsController, calendar *dashboard.Calendar, store *patients.Store) *ViewsHandler {
	return &ViewsHandler{shell: sh, stats: stats, calendar: calendar, store: store}
}

func (h *ViewsHandler) Register(r *mux.Router) {
	r.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/sidebar", h.handleSidebar).Methods(http.MethodGet)
	r.HandleFunc("/calendar", h.handleCalendar).Methods(http.MethodGet)
	r.HandleFunc("/calendar/{direction:prev|next|today}", h.handleCalendarNav).Methods(http.MethodPost)
	r.HandleFunc("/patients", h.handlePatients).Methods(http.MethodGet)
}

type dashboardView struct {
	Screen   shell.Screen           `json:"screen"`
	Stats    dashboard.Stats        `json:"stats"`
	Cards    []dashboard.StatCard   `json:"cards"`
	Calendar dashboard.CalendarView `json:"calendar"`
}

func (h *ViewsHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	screen, err := h.shell.Screen()
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role := h.role()

	stats := h.stats.Load(r.Context(), role)
	respondJSON(w, http.StatusOK, dashboardView{
		Screen:   screen,
		Stats:    stats,
		Cards:    dashboard.Cards(role, stats),
		Calendar: h.calendar.Load(r.Context()),
	})
}

func (h *ViewsHandler) handleSidebar(w http.ResponseWriter, r *http.Request) {
	active := h.shell.Snapshot().View
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"active": active,
		"items":  dashboard.MenuFor(h.role()),
	})
}

func (h *ViewsHandler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if raw := q.Get("date"); raw != "" {
		date, err := dashboard.ParseDate(raw)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		h.calendar.SelectDate(date)
	}

	if raw := q.Get("month"); raw != "" {
		year, month, err := dashboard.ParseMonth(raw)
		if err != nil {
			http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		respondJSON(w, http.StatusOK, h.calendar.ShowMonth(r.Context(), year, month))
		return
	}
	respondJSON(w, http.StatusOK, h.calendar.Load(r.Context()))
}

func (h *ViewsHandler) handleCalendarNav(w http.ResponseWriter, r *http.Request) {
	var view dashboard.CalendarView
	switch mux.Vars(r)["direction"] {
	case "prev":
		view = h.calendar.PrevMonth(r.Context())
	case "next":
		view = h.calendar.NextMonth(r.Context())
	default:
		view = h.calendar.CurrentMonth(r.Context())
	}
	respondJSON(w, http.StatusOK, view)
}

type patientsView struct {
	dashboard.PatientListView
	Cards []dashboard.StatCard `json:"cards"`
}

func (h *ViewsHandler) handlePatients(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.All(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to load local patients")
		all = nil
	}
	respondJSON(w, http.StatusOK, patientsView{
		PatientListView: dashboard.BuildPatientList(all, r.URL.Query().Get("q"), h.role()),
		Cards:           dashboard.LocalCards(patients.Summarize(all)),
	})
}

func (h *ViewsHandler) role() models.Role {
	if u := h.shell.User(); u != nil {
		return u.Role
	}
	return ""
}
