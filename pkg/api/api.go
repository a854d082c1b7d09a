// Package api holds the JSON response helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RespondWithJSON writes payload as a JSON response with the given status.
func RespondWithJSON(code int, w http.ResponseWriter, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("could not marshal json payload")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":500,"message":"could not marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// FailureResponse writes the standard error envelope.
func FailureResponse(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(code, w, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}
