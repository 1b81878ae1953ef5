// Package response writes the JSON bodies shared by handlers and middleware.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/logger"
	"go.uber.org/zap"
)

// ErrorBody is the shape of every error response. Code is only set for
// authentication failures.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err to a status code by kind. Storage failures are logged with
// the request logger and reported as a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		JSON(w, status, ErrorBody{Error: "Internal server error"})
		return
	}

	var de *domain.Error
	msg := err.Error()
	code := ""
	if errors.As(err, &de) {
		msg = de.Message
		code = de.Code
	}
	JSON(w, status, ErrorBody{Error: msg, Code: code})
}

func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusBadRequest
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
