package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/apperr"
)

// envelope is the body of every JSON response.
type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Status: status, Message: message, Data: data})
}

// respondError renders err. Domain errors keep their status and message;
// anything else becomes a generic 500 and is logged.
func (api *Api) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		api.log.Error("unhandled error",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		e = apperr.Internal("Something went wrong", err)
	} else if e.Status >= http.StatusInternalServerError {
		api.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}

	message := http.StatusText(e.Status)
	if e.Status >= http.StatusInternalServerError {
		message = "Something went wrong"
	}
	writeJSON(w, e.Status, envelope{
		Status:  e.Status,
		Message: message,
		Data:    errorData{Message: e.Message},
	})
}
