package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"bulletin/app/models"
	"bulletin/app/services"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Envelope codes for domain failures.
const (
	CodeNotFound = "NOT_FOUND_WRITING"
	CodeNotOwner = "NOT_WRITER"
)

const maxBodyBytes = 1 << 20

// ErrorCode maps a service error onto an HTTP status and envelope code.
func ErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, CodeNotOwner
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrParentMismatch):
		return http.StatusBadRequest, ""
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, ""
	case errors.Is(err, services.ErrDuplicateUser):
		return http.StatusConflict, ""
	default:
		return http.StatusInternalServerError, ""
	}
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope{Status: status, Data: data})
}

func sendError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := ErrorCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
		message = "Internal Server Error"
	}
	sendStatus(w, status, code, message)
}

func sendStatus(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope{Status: status, Code: code, Error: message})
}

// pathID reads a positive integer route variable.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errors.WithMessagef(services.ErrInvalidInput, "invalid %s", name)
	}
	return id, nil
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.WithMessagef(services.ErrInvalidInput, "invalid JSON: %v", err)
	}
	return nil
}
