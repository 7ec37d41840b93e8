package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/social-connect/internal/services"
	"github.com/Dias221467/social-connect/pkg/logger"
)

const serverErrorMessage = "Server error"

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindSelfReference,
		services.KindInvalidIdentifier, services.KindConflict:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Unclassified errors are logged and reported as a
// bare 500 so no internal detail reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) && svcErr.Kind != services.KindInternal {
		writeMessage(w, statusFor(svcErr.Kind), svcErr.Message)
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"method": r.Method,
		"uri":    r.RequestURI,
		"error":  err,
	}).Error("Request failed")
	writeMessage(w, http.StatusInternalServerError, serverErrorMessage)
}

// decodeAndValidate reads the JSON body into dst and validates it. It writes
// the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *Validator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Log.WithError(err).Warn("Failed to decode request body")
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if errs := v.Struct(dst); errs != nil {
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: errs})
		return false
	}
	return true
}
