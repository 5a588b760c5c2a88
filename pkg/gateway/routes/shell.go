package routes

import (
	"net/http"

	"github.com/eyecare-clinic/console/pkg/shell"
	"github.com/gorilla/mux"
)

type ShellHandler struct {
	shell *shell.Shell
}

func NewShellHandler(sh *shell.Shell) *ShellHandler {
	return &ShellHandler{shell: sh}
}

type shellResponse struct {
	shell.Snapshot
	Screen *shell.Screen `json:"screen,omitempty"`
}

func (h *ShellHandler) Register(r *mux.Router) {
	r.HandleFunc("", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/view", h.handleNavigate).Methods(http.MethodPut)
}

func (h *ShellHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.current())
}

func (h *ShellHandler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View string `json:"view"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.shell.Navigate(req.View); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, h.current())
}

func (h *ShellHandler) current() shellResponse {
	resp := shellResponse{Snapshot: h.shell.Snapshot()}
	if screen, err := h.shell.Screen(); err == nil {
		resp.Screen = &screen
	}
	return resp
}
