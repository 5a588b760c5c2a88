package routes

import (
	"net/http"
	"strconv"

	"github.com/eyecare-clinic/console/pkg/activity"
	"github.com/eyecare-clinic/console/pkg/common/logger"
	"github.com/gorilla/mux"
)

type ActivityHandler struct {
	feed activity.Feed
}

// NewActivityHandler serves feed; a nil feed answers 404.
func NewActivityHandler(feed activity.Feed) *ActivityHandler {
	return &ActivityHandler{feed: feed}
}

func (h *ActivityHandler) Register(r *mux.Router) {
	r.HandleFunc("", h.handleRecent).Methods(http.MethodGet)
}

func (h *ActivityHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		http.Error(w, activity.ErrFeedDisabled.Error(), http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.feed.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to load activity feed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
