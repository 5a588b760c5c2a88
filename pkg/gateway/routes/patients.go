package routes

import (
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/patients"
	"github.com/gorilla/mux"
)

// LocalPatientsHandler exposes the local patient register.
type LocalPatientsHandler struct {
	store *patients.Store
}

func NewLocalPatientsHandler(store *patients.Store) *LocalPatientsHandler {
	return &LocalPatientsHandler{store: store}
}

func (h *LocalPatientsHandler) Register(r *mux.Router) {
	r.HandleFunc("", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("", h.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.handleDelete).Methods(http.MethodDelete)
}

func (h *LocalPatientsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logger.Log.WithError(err).Error("failed to list patients")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *LocalPatientsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.NewPatient
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.store.Add(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).Error("failed to add patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *LocalPatientsHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute patient stats")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *LocalPatientsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logger.Log.WithError(err).Error("failed to load patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *LocalPatientsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.PatientPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.store.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		logger.Log.WithError(err).Error("failed to update patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *LocalPatientsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logger.Log.WithError(err).Error("failed to delete patient")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
