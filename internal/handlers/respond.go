package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"tool-market/internal/apperrors"
	"tool-market/internal/middleware"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, middleware.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// respondWithAppError renders err by its apperrors code. Internal failures are
// logged and answered with the public message only.
func respondWithAppError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	code := apperrors.CodeOf(err)
	message := apperrors.PublicMessage(code)
	if typed := apperrors.As(err); typed != nil && code != apperrors.CodeInternal {
		message = typed.Message()
	}

	if apperrors.Status(code) >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", middleware.RequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	respondWithError(w, apperrors.Status(code), string(code), message)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads at most maxBodyBytes of the request body into dst. An empty
// body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.Newf(apperrors.CodeValidation, "Request body exceeds %d bytes", tooLarge.Limit)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, err, "Invalid request body")
	}
	return nil
}
