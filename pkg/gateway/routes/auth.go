package routes

import (
	"net/http"

	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/eyecare-clinic/console/pkg/common/models"
	"github.com/eyecare-clinic/console/pkg/shell"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	shell *shell.Shell
}

func NewAuthHandler(sh *shell.Shell) *AuthHandler {
	return &AuthHandler{shell: sh}
}

func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/form/toggle", h.handleToggle).Methods(http.MethodPost)
	r.HandleFunc("/me", h.handleMe).Methods(http.MethodGet)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.shell.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		logger.Log.WithError(err).WithField("username", req.Username).Warn("login failed")
		respondAPIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"shell": h.shell.Snapshot(),
	})
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.shell.Register(r.Context(), req)
	if err != nil {
		logger.Log.WithError(err).Warn("registration failed")
		respondAPIError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"result": resp,
		"shell":  h.shell.Snapshot(),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.shell.Logout(r.Context()); err != nil {
		logger.Log.WithError(err).Error("failed to clear stored session")
	}
	respondJSON(w, http.StatusOK, h.shell.Snapshot())
}

func (h *AuthHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	if _, err := h.shell.ToggleForm(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, h.shell.Snapshot())
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := h.shell.User()
	if user == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
