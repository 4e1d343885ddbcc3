package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/newsletter-dev/newsletter/shared/errors"
	"github.com/newsletter-dev/newsletter/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// WriteErrorAndStatusCode maps err to a status code and a client-safe message.
// Anything that is not a client error is logged with its full cause chain.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, e.Message, e.StatusCode)
		return
	}

	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case errors.KindValidation, errors.KindNotFound:
			http.Error(w, domainErr.Error(), domainErr.StatusCode())
			return
		case errors.KindAuth:
			logger.Log.Info("authentication failed", "error", err)
			http.Error(w, "Authentication failed", http.StatusUnauthorized)
			return
		}
	}

	// default error is 500
	logger.Log.Error("request failed", "kind", errors.KindOf(err).String(), "error", errors.Chain(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("can't encode response", "error", err)
	}
}
