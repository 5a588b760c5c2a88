package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eyecare-clinic/console/pkg/clinicapi"
	"github.com/eyecare-clinic/console/pkg/common/logger"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}
	return true
}

// respondAPIError relays a clinic API failure. Client errors keep their status
// and message; everything else becomes a 502.
func respondAPIError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var re *clinicapi.RequestError
	if errors.As(err, &re) && re.StatusCode >= 400 && re.StatusCode < 500 {
		status = re.StatusCode
	}
	http.Error(w, clinicapi.FailureMessage(err), status)
}
